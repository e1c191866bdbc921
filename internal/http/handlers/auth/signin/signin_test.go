package signin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, username, password)
	res, _ := args.Get(0).(*auth.LoginResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSigninHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		mockResult  *auth.LoginResult
		mockErr     error
		callsLogin  bool
		wantStatus  int
		wantMessage string
		wantToken   string
	}{
		{
			name:       "valid credentials",
			body:       `{"username":"alice","password":"pw1"}`,
			mockResult: &auth.LoginResult{Token: "tok", Username: "alice", Roles: []string{"ROLE_USER"}},
			callsLogin: true,
			wantStatus: http.StatusOK,
			wantToken:  "tok",
		},
		{
			name:        "bad credentials",
			body:        `{"username":"alice","password":"wrong"}`,
			mockErr:     models.ErrBadCredentials,
			callsLogin:  true,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Bad credentials",
		},
		{
			name:        "store failure",
			body:        `{"username":"alice","password":"pw1"}`,
			mockErr:     errors.New("db down"),
			callsLogin:  true,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal error",
		},
		{
			name:        "invalid json",
			body:        `not a json`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
		{
			name:        "missing password",
			body:        `{"username":"alice"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "field Password is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsLogin {
				var req Request
				require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
				svc.On("Login", mock.Anything, req.Username, req.Password).Return(tt.mockResult, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/public/signin", bytes.NewBufferString(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
				assert.Equal(t, false, got["status"])
			}
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantToken, got["token"])
				assert.Equal(t, "alice", got["username"])
				assert.Equal(t, []any{"ROLE_USER"}, got["roles"])
			}
			svc.AssertExpectations(t)
		})
	}
}
