// Package scheduler периодически удаляет из хранилища токены сброса пароля,
// срок действия которых истёк больше чем retention назад.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/metrics"
)

// ResetTokenRepository удаляет просроченные токены.
type ResetTokenRepository interface {
	PurgeResetTokens(ctx context.Context, before time.Time) (int64, error)
}

// SchedulerService запускает очистку по таймеру.
type SchedulerService struct {
	repo      ResetTokenRepository
	log       *slog.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ResetTokenRepository, log *slog.Logger, interval, retention time.Duration) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Run выполняет очистку сразу и затем каждые interval, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runPurgeResetTokens(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPurgeResetTokens(ctx)
		}
	}
}

func (s *SchedulerService) runPurgeResetTokens(ctx context.Context) {
	before := s.now().Add(-s.retention)
	s.log.Debug("purging stale password reset tokens", slog.Time("before", before))

	n, err := s.repo.PurgeResetTokens(ctx, before)
	if err != nil {
		s.log.Error("failed to purge password reset tokens", sl.Err(err))
		return
	}
	if n == 0 {
		return
	}
	metrics.PasswordResets.WithLabelValues("purged").Add(float64(n))
	s.log.Info("purged stale password reset tokens", slog.Int64("count", n))
}
