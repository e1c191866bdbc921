// Package passwordreset управляет жизненным циклом одноразовых токенов
// сброса пароля: выпуск со ссылкой по почте и погашение.
//
// Состояния токена: создан -> погашен, либо создан -> истёк (вычисляется
// при погашении). Погашение атомарно на стороне хранилища.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/metrics"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// DefaultTTL — срок действия токена сброса.
const DefaultTTL = 24 * time.Hour

// Repository описывает контракт хранилища для сброса пароля.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateResetToken(ctx context.Context, token models.PasswordResetToken) (int64, error)
	GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	RedeemResetToken(ctx context.Context, token, passwordHash string, now time.Time) error
}

// MailSender отправляет письмо со ссылкой сброса.
type MailSender interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Service — координатор сброса пароля.
type Service struct {
	repo        Repository
	mail        MailSender
	log         *slog.Logger
	frontendURL string
	ttl         time.Duration
	now         func() time.Time
	newToken    func() string
}

// New создаёт координатор. ttl <= 0 заменяется на DefaultTTL.
func New(repo Repository, mail MailSender, log *slog.Logger, frontendURL string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:        repo,
		mail:        mail,
		log:         log,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		ttl:         ttl,
		now:         time.Now,
		newToken:    uuid.NewString,
	}
}

// ResetURL строит ссылку на страницу сброса во фронтенде.
func (s *Service) ResetURL(token string) string {
	return s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

// Issue выпускает токен для пользователя с адресом email и отправляет ссылку.
// Ранее выпущенные неиспользованные токены пользователя аннулируются.
func (s *Service) Issue(ctx context.Context, email string) error {
	const op = "services.passwordreset.Issue"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	token := models.PasswordResetToken{
		Token:     s.newToken(),
		ExpiresAt: s.now().Add(s.ttl),
		UserID:    user.ID,
	}
	if _, err = s.repo.CreateResetToken(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.PasswordResets.WithLabelValues("issued").Inc()

	if err = s.mail.SendPasswordReset(ctx, user.Email, s.ResetURL(token.Token)); err != nil {
		s.log.Error("failed to hand off password reset email", slog.Int64("user_id", user.ID), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, models.ErrMailDeliveryFailed, err)
	}
	s.log.Info("password reset token issued", slog.Int64("user_id", user.ID))
	return nil
}

// Redeem проверяет токен и заменяет пароль владельца.
//
// Ошибки: ErrTokenNotFound, ErrTokenAlreadyUsed, ErrResetTokenExpired.
// При одновременном погашении одного токена успешно ровно одно.
func (s *Service) Redeem(ctx context.Context, token, newPassword string) error {
	const op = "services.passwordreset.Redeem"

	current, err := s.repo.GetResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	if current.Used {
		metrics.PasswordResets.WithLabelValues("rejected_used").Inc()
		return models.ErrTokenAlreadyUsed
	}
	if !now.Before(current.ExpiresAt) {
		metrics.PasswordResets.WithLabelValues("rejected_expired").Inc()
		return models.ErrResetTokenExpired
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.RedeemResetToken(ctx, token, hashed, now); err != nil {
		if errors.Is(err, models.ErrTokenAlreadyUsed) {
			metrics.PasswordResets.WithLabelValues("rejected_used").Inc()
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.PasswordResets.WithLabelValues("redeemed").Inc()
	s.log.Info("password reset token redeemed", slog.Int64("user_id", current.UserID))
	return nil
}
