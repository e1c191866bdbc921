// Package auth содержит логику входа по паролю, регистрации и
// построения принципала запроса по данным хранилища.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/metrics"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetRoleByName(ctx context.Context, name models.AppRole) (*models.Role, error)
}

// SignupRequest — данные регистрации.
type SignupRequest struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	Token    string
	Username string
	Roles    []string
}

// AuthService отвечает за вход, регистрацию и загрузку принципала.
type AuthService struct {
	users            UserRepository
	jwtMaker         jwt.Maker
	log              *slog.Logger
	now              func() time.Time
	allowAdminSignup bool
}

// Option настраивает AuthService.
type Option func(*AuthService)

// WithAdminSignup разрешает публичную регистрацию с ролью "admin".
func WithAdminSignup(allowed bool) Option {
	return func(s *AuthService) {
		s.allowAdminSignup = allowed
	}
}

// NewAuthService создает новый экземпляр AuthService.
// По умолчанию регистрация с ролью "admin" запрещена.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login проверяет пароль и выпускает токен с ролью пользователя как
// единственным полномочием. Любая причина отказа сводится к ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (*LoginResult, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			_ = password.CompareDummy(rawPassword)
			metrics.SigninAttempts.WithLabelValues("bad_credentials").Inc()
			return nil, models.ErrBadCredentials
		}
		metrics.SigninAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.HasPassword() {
		_ = password.CompareDummy(rawPassword)
		metrics.SigninAttempts.WithLabelValues("bad_credentials").Inc()
		return nil, models.ErrBadCredentials
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Error("stored password hash is unusable", slog.Int64("user_id", user.ID), sl.Err(err))
		}
		metrics.SigninAttempts.WithLabelValues("bad_credentials").Inc()
		return nil, models.ErrBadCredentials
	}
	if !user.CanAuthenticate() {
		metrics.SigninAttempts.WithLabelValues("bad_credentials").Inc()
		return nil, models.ErrBadCredentials
	}

	roles := user.Authorities()
	token, err := s.jwtMaker.GenerateToken(user.Username, roles)
	if err != nil {
		metrics.SigninAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SigninAttempts.WithLabelValues("success").Inc()
	return &LoginResult{
		Token:    token,
		Username: user.Username,
		Roles:    roles,
	}, nil
}

// Register создаёт учётную запись с паролем. Неизвестная роль и запрещённая
// роль "admin" отклоняются до обращения к хранилищу.
func (s *AuthService) Register(ctx context.Context, req SignupRequest) (int64, error) {
	const op = "services.auth.Register"

	appRole, err := models.ParseSignupRole(req.Role)
	if err != nil {
		return 0, err
	}
	if appRole == models.RoleAdmin && !s.allowAdminSignup {
		s.log.Warn("admin self sign-up rejected", slog.String("username", req.Username))
		return 0, models.ErrRoleNotAllowed
	}
	role, err := s.users.GetRoleByName(ctx, appRole)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	user := models.NewActiveUser(req.Username, req.Email, *role, models.SignUpMethodEmail, s.now())
	user.PasswordHash = hashed

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.Int64("user_id", id), slog.String("role", string(appRole)))
	return id, nil
}

// LoadPrincipal строит принципал по текущему состоянию пользователя в хранилище.
// Заблокированный или отключённый пользователь даёт ErrUnauthenticated.
func (s *AuthService) LoadPrincipal(ctx context.Context, username string) (*models.Principal, error) {
	const op = "services.auth.LoadPrincipal"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.CanAuthenticate() {
		return nil, models.ErrUnauthenticated
	}
	return &models.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Authorities: user.Authorities(),
	}, nil
}

// ValidateToken проверяет подпись и срок токена и загружает принципал его субъекта.
// Любая причина отказа в аутентификации сводится к ErrUnauthenticated.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
	}
	return s.LoadPrincipal(ctx, claims.Subject)
}

// CurrentUser возвращает пользователя по имени.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*models.User, error) {
	const op = "services.auth.CurrentUser"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
