package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// GetRoleByName возвращает роль по имени или ErrRoleNotFound.
func (s *Storage) GetRoleByName(ctx context.Context, name models.AppRole) (*models.Role, error) {
	const op = "storage.GetRoleByName"

	var (
		role     models.Role
		roleName string
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT role_id, role_name FROM roles WHERE role_name = $1`, string(name),
	).Scan(&role.ID, &roleName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, models.ErrRoleNotFound))
	}
	role.Name = models.AppRole(roleName)
	return &role, nil
}

// EnsureRole создаёт роль, если её ещё нет, и возвращает сохранённую запись.
func (s *Storage) EnsureRole(ctx context.Context, name models.AppRole) (*models.Role, error) {
	const op = "storage.EnsureRole"

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO roles (role_name) VALUES ($1) ON CONFLICT (role_name) DO NOTHING`, string(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	role, err := s.GetRoleByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return role, nil
}

// ListRoles возвращает все роли.
func (s *Storage) ListRoles(ctx context.Context) ([]models.Role, error) {
	const op = "storage.ListRoles"

	rows, err := s.DB.QueryContext(ctx, `SELECT role_id, role_name FROM roles ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var roles []models.Role
	for rows.Next() {
		var (
			role     models.Role
			roleName string
		)
		if err = rows.Scan(&role.ID, &roleName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		role.Name = models.AppRole(roleName)
		roles = append(roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return roles, nil
}
