package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// mapError переводит ошибки драйвера в ошибки предметной области.
// notFound подставляется вместо sql.ErrNoRows.
func mapError(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case constraintUsername:
			return models.ErrDuplicateUsername
		case constraintEmail:
			return models.ErrDuplicateEmail
		}
	}
	return err
}
