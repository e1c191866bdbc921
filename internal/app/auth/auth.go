// Package auth собирает процесс auth-service: gRPC-сервер проверки
// токенов и стандартный health-сервис поверх общего хранилища пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/secure-notes/internal/config"
	"github.com/magabrotheeeer/secure-notes/internal/grpc/server"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	authservices "github.com/magabrotheeeer/secure-notes/internal/services/auth"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// App — процесс auth-service.
type App struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	storage    *repository.Storage
	logger     *slog.Logger
}

// New подключается к хранилищу и готовит gRPC-сервер на cfg.GRPC.Address.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservices.NewAuthService(db, jwtMaker, logger)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	server.Register(grpcServer, server.NewTokenServer(authService, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &App{
		grpcServer: grpcServer,
		health:     healthServer,
		listener:   lis,
		storage:    db,
		logger:     logger,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("auth gRPC service listening", slog.String("address", a.listener.Addr().String()))
		if err := a.grpcServer.Serve(a.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.health.Shutdown()
		a.grpcServer.GracefulStop()
		if err := a.storage.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
		return nil
	})

	return g.Wait()
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			slog.String("method", info.FullMethod),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil),
		)
		return resp, err
	}
}
