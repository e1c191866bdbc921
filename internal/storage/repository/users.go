package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const userColumns = `u.user_id, u.username, u.email, u.password,
	u.account_non_locked, u.account_non_expired, u.credentials_non_expired, u.enabled,
	u.credentials_expiry_date, u.account_expiry_date, u.two_factor_secret,
	u.is_two_factor_enabled, u.sign_up_method, u.created_date, u.updated_date,
	r.role_id, r.role_name`

const userFrom = ` FROM users u JOIN roles r ON r.role_id = u.role_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                                 models.User
		password, twoFactorSecret, signUp sql.NullString
		credentialsExpiry, accountExpiry  sql.NullTime
		roleName                          string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &password,
		&u.AccountNonLocked, &u.AccountNonExpired, &u.CredentialsNonExpired, &u.Enabled,
		&credentialsExpiry, &accountExpiry, &twoFactorSecret,
		&u.TwoFactorEnabled, &signUp, &u.CreatedAt, &u.UpdatedAt,
		&u.Role.ID, &roleName); err != nil {
		return nil, err
	}
	u.PasswordHash = password.String
	u.TwoFactorSecret = twoFactorSecret.String
	u.SignUpMethod = signUp.String
	u.Role.Name = models.AppRole(roleName)
	if credentialsExpiry.Valid {
		u.CredentialsExpiryDate = &credentialsExpiry.Time
	}
	if accountExpiry.Valid {
		u.AccountExpiryDate = &accountExpiry.Time
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Нарушение уникальности возвращает ErrDuplicateUsername или ErrDuplicateEmail.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, email, password, role_id,
			      account_non_locked, account_non_expired, credentials_non_expired, enabled,
			      credentials_expiry_date, account_expiry_date, is_two_factor_enabled, sign_up_method)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING user_id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, nullString(user.PasswordHash), user.Role.ID,
		user.AccountNonLocked, user.AccountNonExpired, user.CredentialsNonExpired, user.Enabled,
		nullTime(user.CredentialsExpiryDate), nullTime(user.AccountExpiryDate),
		user.TwoFactorEnabled, nullString(user.SignUpMethod),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err, nil))
	}
	return id, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+userFrom+` WHERE u.username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, models.ErrUserNotFound))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по электронной почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+userFrom+` WHERE u.email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, models.ErrUserNotFound))
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+userFrom+` WHERE u.user_id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, models.ErrUserNotFound))
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, упорядоченных по ID.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"

	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+userFrom+` ORDER BY u.user_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserRole назначает пользователю роль.
func (s *Storage) UpdateUserRole(ctx context.Context, userID, roleID int64) error {
	const op = "storage.UpdateUserRole"
	return s.execUserUpdate(ctx, op,
		`UPDATE users SET role_id = $1, updated_date = NOW() WHERE user_id = $2`, roleID, userID)
}

// UpdatePassword сохраняет новый хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	const op = "storage.UpdatePassword"
	return s.execUserUpdate(ctx, op,
		`UPDATE users SET password = $1, updated_date = NOW() WHERE user_id = $2`, passwordHash, userID)
}

// UpdateUserFlag изменяет один из флагов состояния учётной записи.
func (s *Storage) UpdateUserFlag(ctx context.Context, userID int64, flag models.UserFlag, value bool) error {
	const op = "storage.UpdateUserFlag"

	switch flag {
	case models.FlagAccountNonLocked, models.FlagAccountNonExpired, models.FlagCredentialsNonExpired, models.FlagEnabled:
	default:
		return fmt.Errorf("%s: unknown flag %q", op, flag)
	}
	query := `UPDATE users SET ` + string(flag) + ` = $1, updated_date = NOW() WHERE user_id = $2`
	return s.execUserUpdate(ctx, op, query, value, userID)
}

func (s *Storage) execUserUpdate(ctx context.Context, op, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	return nil
}
