package forgotpassword

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Issue(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestForgotPasswordHandler(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		mockErr     error
		callsSvc    bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "email sent",
			query:       "?email=alice%40x.com",
			callsSvc:    true,
			wantStatus:  http.StatusOK,
			wantMessage: "Password reset email sent!",
		},
		{
			name:        "unknown email",
			query:       "?email=alice%40x.com",
			mockErr:     models.ErrUserNotFound,
			callsSvc:    true,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Error sending password reset email",
		},
		{
			name:        "mail delivery failure",
			query:       "?email=alice%40x.com",
			mockErr:     fmt.Errorf("issue: %w", models.ErrMailDeliveryFailed),
			callsSvc:    true,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Error sending password reset email",
		},
		{
			name:        "missing email",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsSvc {
				svc.On("Issue", mock.Anything, "alice@x.com").Return(tt.mockErr).Once()
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/public/forgot-password"+tt.query, nil)
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantMessage, got["message"])
			svc.AssertExpectations(t)
		})
	}
}
