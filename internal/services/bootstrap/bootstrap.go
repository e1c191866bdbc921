// Package bootstrap готовит хранилище при старте: создаёт роли и,
// по флагу конфига, демонстрационные учётные записи.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Repository описывает контракт хранилища для начального наполнения.
type Repository interface {
	EnsureRole(ctx context.Context, name models.AppRole) (*models.Role, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (int64, error)
}

type seedUser struct {
	username string
	email    string
	password string
	role     models.AppRole
	locked   bool
}

var seedUsers = []seedUser{
	{username: "user1", email: "user1@example.com", password: "password1", role: models.RoleUser, locked: true},
	{username: "admin", email: "admin@example.com", password: "adminPass", role: models.RoleAdmin},
}

// Run создаёт недостающие роли и, если withUsers, демонстрационных пользователей.
// Уже существующие записи не меняются.
func Run(ctx context.Context, repo Repository, log *slog.Logger, withUsers bool) error {
	const op = "services.bootstrap.Run"

	roles := make(map[models.AppRole]models.Role, len(models.AllRoles))
	for _, name := range models.AllRoles {
		role, err := repo.EnsureRole(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: ensure role %s: %w", op, name, err)
		}
		roles[name] = *role
	}
	log.Debug("roles ensured", slog.Int("count", len(roles)))

	if !withUsers {
		return nil
	}
	for _, su := range seedUsers {
		if err := createSeedUser(ctx, repo, roles[su.role], su); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("seed user ready", slog.String("username", su.username))
	}
	return nil
}

func createSeedUser(ctx context.Context, repo Repository, role models.Role, su seedUser) error {
	_, err := repo.GetUserByUsername(ctx, su.username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	hashed, err := password.GetHash(su.password)
	if err != nil {
		return err
	}
	user := models.NewActiveUser(su.username, su.email, role, models.SignUpMethodEmail, time.Now())
	user.PasswordHash = hashed
	user.AccountNonLocked = !su.locked

	_, err = repo.CreateUser(ctx, user)
	if errors.Is(err, models.ErrDuplicateUsername) || errors.Is(err, models.ErrDuplicateEmail) {
		return nil
	}
	return err
}
