package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) ValidateToken(ctx context.Context, token string) (*models.Principal, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*models.Principal)
	return p, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func dialBufconn(t *testing.T, validator TokenValidator) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer()
	Register(srv, NewTokenServer(validator, newNoopLogger()))
	healthpb.RegisterHealthServer(srv, health.NewServer())
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestTokenServer_Validate(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		mockSetup func(*ValidatorMock)
		wantCode  codes.Code
	}{
		{
			name:  "valid",
			token: "good",
			mockSetup: func(m *ValidatorMock) {
				m.On("ValidateToken", mock.Anything, "good").Return(&models.Principal{
					UserID: 42, Username: "alice", Email: "alice@x.com", Authorities: []string{"ROLE_ADMIN"},
				}, nil).Once()
			},
			wantCode: codes.OK,
		},
		{
			name:     "empty token",
			wantCode: codes.InvalidArgument,
		},
		{
			name:  "rejected token",
			token: "bad",
			mockSetup: func(m *ValidatorMock) {
				m.On("ValidateToken", mock.Anything, "bad").Return(nil, models.ErrUnauthenticated).Once()
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name:  "store failure",
			token: "good",
			mockSetup: func(m *ValidatorMock) {
				m.On("ValidateToken", mock.Anything, "good").Return(nil, errors.New("db down")).Once()
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := new(ValidatorMock)
			if tt.mockSetup != nil {
				tt.mockSetup(v)
			}
			conn := dialBufconn(t, v)

			out := new(structpb.Struct)
			err := conn.Invoke(context.Background(), ValidateFullMethod, wrapperspb.String(tt.token), out)

			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				got := out.AsMap()
				assert.Equal(t, "alice", got["username"])
				assert.Equal(t, float64(42), got["userId"])
				assert.Equal(t, []any{"ROLE_ADMIN"}, got["authorities"])
			}
			v.AssertExpectations(t)
		})
	}
}

func TestHealthService(t *testing.T) {
	conn := dialBufconn(t, new(ValidatorMock))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
