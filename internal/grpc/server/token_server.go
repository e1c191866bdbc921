// Package server реализует gRPC-сервис проверки bearer-токенов.
//
// Сервис описан вручную через grpc.ServiceDesc на well-known типах protobuf:
// запрос — google.protobuf.StringValue с токеном, ответ — google.protobuf.Struct
// с полями username, userId, email и authorities.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Полные имена сервиса и метода.
const (
	ServiceName        = "securenotes.auth.v1.TokenService"
	ValidateFullMethod = "/" + ServiceName + "/Validate"
)

// TokenServiceServer — серверная часть TokenService.
type TokenServiceServer interface {
	Validate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// TokenServiceDesc регистрирует TokenService на grpc.Server.
var TokenServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    validateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securenotes/auth/v1/token.proto",
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TokenServiceServer).Validate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// TokenValidator проверяет токен и возвращает принципал.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// TokenServer реализует TokenServiceServer.
type TokenServer struct {
	validator TokenValidator
	log       *slog.Logger
}

// NewTokenServer создает новый экземпляр TokenServer.
func NewTokenServer(validator TokenValidator, log *slog.Logger) *TokenServer {
	return &TokenServer{
		validator: validator,
		log:       log,
	}
}

// Register добавляет TokenService на сервер.
func Register(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&TokenServiceDesc, srv)
}

// Validate проверяет токен. Невалидный токен даёт codes.Unauthenticated.
func (s *TokenServer) Validate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.server.Validate"
	log := s.log.With(slog.String("op", op))

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	principal, err := s.validator.ValidateToken(ctx, req.GetValue())
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			log.Debug("token rejected", sl.Err(err))
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		log.Error("failed to validate token", sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	authorities := make([]any, 0, len(principal.Authorities))
	for _, a := range principal.Authorities {
		authorities = append(authorities, a)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"username":    principal.Username,
		"userId":      float64(principal.UserID),
		"email":       principal.Email,
		"authorities": authorities,
	})
	if err != nil {
		log.Error("failed to build response", sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil
}
