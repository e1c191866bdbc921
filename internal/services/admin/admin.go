// Package admin содержит операции администратора над учётными записями.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Repository описывает контракт хранилища для администрирования.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetRoleByName(ctx context.Context, name models.AppRole) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpdateUserRole(ctx context.Context, userID, roleID int64) error
	UpdateUserFlag(ctx context.Context, userID int64, flag models.UserFlag, value bool) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// Service операции администратора.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "services.admin.ListUsers"
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// GetUser возвращает пользователя по ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.admin.GetUser"
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListRoles возвращает все роли.
func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	const op = "services.admin.ListRoles"
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return roles, nil
}

// UpdateUserRole назначает пользователю роль по полному имени (ROLE_USER, ROLE_ADMIN).
func (s *Service) UpdateUserRole(ctx context.Context, userID int64, roleName string) error {
	const op = "services.admin.UpdateUserRole"

	appRole, err := models.ParseAppRole(roleName)
	if err != nil {
		return err
	}
	role, err := s.repo.GetRoleByName(ctx, appRole)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdateUserRole(ctx, userID, role.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user role updated", slog.Int64("user_id", userID), slog.String("role", string(appRole)))
	return nil
}

// UpdateLockStatus блокирует (lock=true) или разблокирует учётную запись.
func (s *Service) UpdateLockStatus(ctx context.Context, userID int64, lock bool) error {
	return s.setFlag(ctx, "services.admin.UpdateLockStatus", userID, models.FlagAccountNonLocked, !lock)
}

// UpdateExpiryStatus помечает учётную запись просроченной (expire=true) или снимает отметку.
func (s *Service) UpdateExpiryStatus(ctx context.Context, userID int64, expire bool) error {
	return s.setFlag(ctx, "services.admin.UpdateExpiryStatus", userID, models.FlagAccountNonExpired, !expire)
}

// UpdateEnabledStatus включает или отключает учётную запись.
func (s *Service) UpdateEnabledStatus(ctx context.Context, userID int64, enabled bool) error {
	return s.setFlag(ctx, "services.admin.UpdateEnabledStatus", userID, models.FlagEnabled, enabled)
}

// UpdateCredentialsExpiryStatus помечает пароль просроченным (expire=true) или снимает отметку.
func (s *Service) UpdateCredentialsExpiryStatus(ctx context.Context, userID int64, expire bool) error {
	return s.setFlag(ctx, "services.admin.UpdateCredentialsExpiryStatus", userID, models.FlagCredentialsNonExpired, !expire)
}

// UpdatePassword задаёт пользователю новый пароль.
func (s *Service) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	const op = "services.admin.UpdatePassword"

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user password updated by admin", slog.Int64("user_id", userID))
	return nil
}

func (s *Service) setFlag(ctx context.Context, op string, userID int64, flag models.UserFlag, value bool) error {
	if err := s.repo.UpdateUserFlag(ctx, userID, flag, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user flag updated",
		slog.Int64("user_id", userID),
		slog.String("flag", string(flag)),
		slog.Bool("value", value),
	)
	return nil
}
