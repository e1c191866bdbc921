package securenotes

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// регистрирует спецификацию OpenAPI для /docs
	_ "github.com/magabrotheeeer/secure-notes/internal/docs"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/getuser"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/listroles"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/listusers"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/updatepassword"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/updaterole"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/updatestatus"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/userinfo"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/username"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/health"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/notes/create"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/notes/list"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/notes/remove"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/notes/update"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/oauth2"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
)

// AuthService — вход, регистрация и загрузка принципала.
type AuthService interface {
	signin.Service
	signup.Service
	userinfo.Service
	middlewarectx.PrincipalLoader
}

// ResetService — выпуск и погашение токенов сброса пароля.
type ResetService interface {
	forgotpassword.Service
	resetpassword.Service
}

// NotesService — CRUD заметок владельца.
type NotesService interface {
	create.Service
	list.Service
	update.Service
	remove.Service
}

// AdminService — операции администратора над учётными записями.
type AdminService interface {
	listusers.Service
	getuser.Service
	listroles.Service
	updaterole.Service
	updatepassword.Service
	UpdateLockStatus(ctx context.Context, userID int64, lock bool) error
	UpdateExpiryStatus(ctx context.Context, userID int64, expire bool) error
	UpdateEnabledStatus(ctx context.Context, userID int64, enabled bool) error
	UpdateCredentialsExpiryStatus(ctx context.Context, userID int64, expire bool) error
}

// Dependencies — всё, что нужно маршрутам.
type Dependencies struct {
	Tokens      middlewarectx.TokenParser
	Auth        AuthService
	Reset       ResetService
	Notes       NotesService
	Admin       AdminService
	Providers   oauth2.Providers
	States      oauth2.StateStore
	Reconciler  oauth2.Reconciler
	Limiter     *middlewarectx.IPRateLimiter
	Checkers    map[string]health.Checker
	FrontendURL string
	StateTTL    time.Duration
	// TrustProxyHeaders разрешает брать адрес клиента из заголовков прокси.
	TrustProxyHeaders bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Dependencies) {
	// Глобальные middleware
	r.Use(middleware.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Authenticate(deps.Tokens, deps.Auth, logger),
		middlewarectx.Gate(middlewarectx.DefaultRules(), logger),
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(deps.Limiter, logger))
				r.Post("/public/signin", signin.New(logger, deps.Auth).ServeHTTP)
				r.Post("/public/signup", signup.New(logger, deps.Auth).ServeHTTP)
				r.Post("/public/forgot-password", forgotpassword.New(logger, deps.Reset).ServeHTTP)
				r.Post("/public/reset-password", resetpassword.New(logger, deps.Reset).ServeHTTP)
			})
			r.Get("/user", userinfo.New(logger, deps.Auth).ServeHTTP)
			r.Get("/username", username.New().ServeHTTP)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", list.New(logger, deps.Notes).ServeHTTP)
			r.Post("/", create.New(logger, deps.Notes).ServeHTTP)
			r.Put("/{noteId}", update.New(logger, deps.Notes).ServeHTTP)
			r.Delete("/{noteId}", remove.New(logger, deps.Notes).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/getusers", listusers.New(logger, deps.Admin).ServeHTTP)
			r.Get("/user/{id}", getuser.New(logger, deps.Admin).ServeHTTP)
			r.Get("/roles", listroles.New(logger, deps.Admin).ServeHTTP)
			r.Put("/update-role", updaterole.New(logger, deps.Admin).ServeHTTP)
			r.Put("/update-password", updatepassword.New(logger, deps.Admin).ServeHTTP)
			r.Put("/update-lock-status",
				updatestatus.New(logger, deps.Admin.UpdateLockStatus, "lock", "Account lock status updated").ServeHTTP)
			r.Put("/update-expiry-status",
				updatestatus.New(logger, deps.Admin.UpdateExpiryStatus, "expire", "Account expiry status updated").ServeHTTP)
			r.Put("/update-enabled-status",
				updatestatus.New(logger, deps.Admin.UpdateEnabledStatus, "enabled", "Account enabled status updated").ServeHTTP)
			r.Put("/update-credentials-expiry-status",
				updatestatus.New(logger, deps.Admin.UpdateCredentialsExpiryStatus, "expire", "Credentials expiry status updated").ServeHTTP)
		})
	})

	r.Route("/oauth2", func(r chi.Router) {
		r.Get("/authorization/{provider}",
			oauth2.NewAuthorize(logger, deps.Providers, deps.States, deps.StateTTL).ServeHTTP)
		r.Get("/callback/{provider}",
			oauth2.NewCallback(logger, deps.Providers, deps.States, deps.Reconciler, deps.FrontendURL).ServeHTTP)
	})

	r.Get("/health", health.New(logger, deps.Checkers).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
