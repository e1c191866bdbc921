// Package securenotes собирает HTTP API заметок: хранилище, кеш состояний
// федеративного входа, отправку писем, сервисы и маршруты.
package securenotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/secure-notes/internal/cache"
	"github.com/magabrotheeeer/secure-notes/internal/config"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/health"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/identityprovider"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/lib/smtp"
	"github.com/magabrotheeeer/secure-notes/internal/migrations"
	"github.com/magabrotheeeer/secure-notes/internal/rabbitmq"
	adminservice "github.com/magabrotheeeer/secure-notes/internal/services/admin"
	authservice "github.com/magabrotheeeer/secure-notes/internal/services/auth"
	"github.com/magabrotheeeer/secure-notes/internal/services/bootstrap"
	"github.com/magabrotheeeer/secure-notes/internal/services/federated"
	notesservice "github.com/magabrotheeeer/secure-notes/internal/services/notes"
	"github.com/magabrotheeeer/secure-notes/internal/services/passwordreset"
	"github.com/magabrotheeeer/secure-notes/internal/services/sender"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App — процесс HTTP API.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает зависимости, применяет миграции, выполняет начальное
// наполнение и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.securenotes.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	if _, err = migrations.Run(db.DB, cfg.MigrationsPath, logger); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = bootstrap.Run(ctx, db, logger, cfg.Bootstrap.SeedUsers); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app.cache, err = cache.InitServer(ctx, cfg.Redis)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mail, err := app.initMail(cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	providers, err := initProviders(ctx, cfg.OAuth2)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("identity providers configured", slog.Any("providers", providers.Names()))

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	checkers := map[string]health.Checker{
		"postgres": db,
		"redis":    app.cache,
	}
	if app.amqp != nil {
		conn := app.amqp
		checkers["rabbitmq"] = health.CheckerFunc(func(context.Context) error {
			if conn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		})
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Dependencies{
		Tokens:      jwtMaker,
		Auth:        authservice.NewAuthService(db, jwtMaker, logger, authservice.WithAdminSignup(cfg.Bootstrap.AllowAdminSignup)),
		Reset:       passwordreset.New(db, mail, logger, cfg.FrontendURL, cfg.Reset.TokenTTL),
		Notes:       notesservice.NewService(db, logger),
		Admin:       adminservice.NewService(db, logger),
		Providers:   providers,
		States:      app.cache,
		Reconciler:  federated.NewReconciler(db, jwtMaker, logger),
		Limiter:     middlewarectx.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Checkers:    checkers,
		FrontendURL: cfg.FrontendURL,
		StateTTL:    cfg.OAuth2.StateTTL,

		TrustProxyHeaders: cfg.HTTPServer.TrustProxyHeaders,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// initMail выбирает способ доставки писем по cfg.Mail.Mode.
func (a *App) initMail(cfg *config.Config) (passwordreset.MailSender, error) {
	switch cfg.Mail.Mode {
	case config.MailModeSMTP:
		a.logger.Info("mail is delivered directly over SMTP", slog.String("host", cfg.SMTP.Host))
		return sender.NewSenderService(a.logger, smtp.NewTransport(cfg.SMTP, a.logger)), nil
	default:
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		a.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.GetMailQueues(cfg.RabbitMQ))
		if err != nil {
			return nil, err
		}
		a.logger.Info("mail is published to broker", slog.String("exchange", cfg.RabbitMQ.Exchange))
		return sender.NewQueuePublisher(ch, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey), nil
	}
}

// initProviders регистрирует провайдеров, для которых заданы client id и secret.
func initProviders(ctx context.Context, cfg config.OAuth2Config) (*identityprovider.Registry, error) {
	var providers []identityprovider.Provider
	if cfg.GitHub.Enabled() {
		providers = append(providers,
			identityprovider.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.RedirectURL))
	}
	if cfg.Google.Enabled() {
		google, err := identityprovider.NewGoogleProvider(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		if err != nil {
			return nil, err
		}
		providers = append(providers, google)
	}
	return identityprovider.NewRegistry(providers...), nil
}

// Run обслуживает HTTP до отмены ctx, затем корректно останавливает сервер
// и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down HTTP server gracefully")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	})

	return g.Wait()
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
