package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, username string) ([]*models.Note, error) {
	args := m.Called(ctx, username)
	n, _ := args.Get(0).([]*models.Note)
	return n, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListHandler(t *testing.T) {
	alice := &models.Principal{UserID: 1, Username: "alice"}

	tests := []struct {
		name       string
		principal  *models.Principal
		mockSetup  func(*ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name:      "own notes",
			principal: alice,
			mockSetup: func(m *ServiceMock) {
				m.On("List", mock.Anything, "alice").Return([]*models.Note{
					{ID: 1, Content: "a", OwnerUsername: "alice"},
					{ID: 2, Content: "b", OwnerUsername: "alice"},
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":1,"content":"a","ownerUsername":"alice"},{"id":2,"content":"b","ownerUsername":"alice"}]`,
		},
		{
			name:      "no notes renders empty array",
			principal: alice,
			mockSetup: func(m *ServiceMock) {
				m.On("List", mock.Anything, "alice").Return(nil, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "unauthenticated",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:      "store failure",
			principal: alice,
			mockSetup: func(m *ServiceMock) {
				m.On("List", mock.Anything, "alice").Return(nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tt.principal != nil {
				req = req.WithContext(middlewarectx.ContextWithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
			}
			svc.AssertExpectations(t)
		})
	}
}
