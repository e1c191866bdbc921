package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, req auth.SignupRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSignupHandler_ServeHTTP(t *testing.T) {
	alice := auth.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "pw1"}

	tests := []struct {
		name        string
		body        string
		mockErr     error
		callsSvc    bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "registered",
			body:        `{"username":"alice","email":"alice@x.com","password":"pw1"}`,
			callsSvc:    true,
			wantStatus:  http.StatusOK,
			wantMessage: "User registered successfully!",
		},
		{
			name:        "duplicate username",
			body:        `{"username":"alice","email":"alice@x.com","password":"pw1"}`,
			mockErr:     fmt.Errorf("services.auth.Register: %w", models.ErrDuplicateUsername),
			callsSvc:    true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Error: Username is already taken!",
		},
		{
			name:        "duplicate email",
			body:        `{"username":"alice","email":"alice@x.com","password":"pw1"}`,
			mockErr:     models.ErrDuplicateEmail,
			callsSvc:    true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Error: Email is already in use!",
		},
		{
			name:        "store failure",
			body:        `{"username":"alice","email":"alice@x.com","password":"pw1"}`,
			mockErr:     errors.New("db down"),
			callsSvc:    true,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal error",
		},
		{
			name:        "invalid email",
			body:        `{"username":"alice","email":"nope","password":"pw1"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "field Email must be a valid email",
		},
		{
			name:        "invalid json",
			body:        `{`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsSvc {
				svc.On("Register", mock.Anything, alice).Return(int64(1), tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/public/signup", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantMessage, got["message"])
			svc.AssertExpectations(t)
		})
	}
}

func TestSignupHandler_UnknownRole(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(r auth.SignupRequest) bool { return r.Role == "root" })).
		Return(int64(0), models.ErrUnknownRole).Once()

	body := `{"username":"bob","email":"bob@x.com","password":"pw","role":"root"}`
	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: Role is not found.")
}

func TestSignupHandler_PasswordByteLimit(t *testing.T) {
	tests := []struct {
		name     string
		password string
		mockErr  error
		callsSvc bool
	}{
		{
			// 40 символов, но 80 байт
			name:     "multibyte password over limit",
			password: strings.Repeat("ж", 40),
		},
		{
			name:     "ascii password over limit",
			password: strings.Repeat("a", 73),
		},
		{
			name:     "hasher rejects password",
			password: "pw1",
			mockErr:  fmt.Errorf("services.auth.Register: %w", bcrypt.ErrPasswordTooLong),
			callsSvc: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsSvc {
				svc.On("Register", mock.Anything, mock.Anything).Return(int64(0), tt.mockErr).Once()
			}

			body, err := json.Marshal(Request{Username: "boris", Email: "boris@x.com", Password: tt.password})
			require.NoError(t, err)
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"status":false,"message":"password is too long"}`, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestSignupHandler_AdminRoleNotAllowed(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(r auth.SignupRequest) bool { return r.Role == "admin" })).
		Return(int64(0), models.ErrRoleNotAllowed).Once()

	body := `{"username":"eve","email":"eve@x.com","password":"pw","role":"admin"}`
	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Error: Role is not allowed."}`, rec.Body.String())
	svc.AssertExpectations(t)
}
