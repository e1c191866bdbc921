// Package client — клиент gRPC-сервиса проверки токенов для соседних сервисов.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/secure-notes/internal/grpc/server"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// TokenClient вызывает TokenService/Validate.
type TokenClient struct {
	conn *grpc.ClientConn
}

// NewTokenClient создает клиента. Соединение устанавливается лениво.
func NewTokenClient(addr string, opts ...grpc.DialOption) (*TokenClient, error) {
	const op = "grpc.client.NewTokenClient"

	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TokenClient{conn: conn}, nil
}

// Close закрывает соединение.
func (c *TokenClient) Close() error {
	return c.conn.Close()
}

// Validate возвращает принципал владельца токена.
// Отклонённый сервером токен даёт models.ErrUnauthenticated.
func (c *TokenClient) Validate(ctx context.Context, token string) (*models.Principal, error) {
	const op = "grpc.client.Validate"

	out := new(structpb.Struct)
	err := c.conn.Invoke(ctx, server.ValidateFullMethod, wrapperspb.String(token), out)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Unauthenticated {
			return nil, models.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields := out.GetFields()
	p := &models.Principal{
		Username: fields["username"].GetStringValue(),
		UserID:   int64(fields["userId"].GetNumberValue()),
		Email:    fields["email"].GetStringValue(),
	}
	for _, v := range fields["authorities"].GetListValue().GetValues() {
		p.Authorities = append(p.Authorities, v.GetStringValue())
	}
	return p, nil
}
