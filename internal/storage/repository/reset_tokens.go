package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// CreateResetToken сохраняет новый токен сброса пароля. Все ещё не
// использованные токены того же пользователя помечаются использованными
// в той же транзакции, поэтому действует только последняя ссылка.
func (s *Storage) CreateResetToken(ctx context.Context, token models.PasswordResetToken) (int64, error) {
	const op = "storage.CreateResetToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	err := s.withTx(ctx, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE password_reset_tokens SET used = TRUE WHERE user_id = $1 AND used = FALSE`,
			token.UserID); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`INSERT INTO password_reset_tokens (token, expiry_date, used, user_id)
			 VALUES ($1, $2, FALSE, $3)
			 RETURNING id`,
			token.Token, token.ExpiresAt, token.UserID,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetResetToken возвращает токен по значению или ErrTokenNotFound.
func (s *Storage) GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	const op = "storage.GetResetToken"

	t, err := getResetToken(ctx, s.DB, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func getResetToken(ctx context.Context, db DBTX, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := db.QueryRowContext(ctx,
		`SELECT id, token, expiry_date, used, user_id FROM password_reset_tokens WHERE token = $1`,
		token,
	).Scan(&t.ID, &t.Token, &t.ExpiresAt, &t.Used, &t.UserID)
	if err != nil {
		return nil, mapError(err, models.ErrTokenNotFound)
	}
	return &t, nil
}

// RedeemResetToken атомарно гасит токен и записывает новый хэш пароля владельца.
//
// Токен помечается использованным условным UPDATE, который проходит только
// при used = false и expiry_date > now. Из двух одновременных погашений
// успешно ровно одно, второе получает ErrTokenAlreadyUsed.
func (s *Storage) RedeemResetToken(ctx context.Context, token, passwordHash string, now time.Time) error {
	const op = "storage.RedeemResetToken"

	err := s.withTx(ctx, func(tx DBTX) error {
		var userID int64
		err := tx.QueryRowContext(ctx,
			`UPDATE password_reset_tokens SET used = TRUE
			 WHERE token = $1 AND used = FALSE AND expiry_date > $2
			 RETURNING user_id`,
			token, now,
		).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			current, err := getResetToken(ctx, tx, token)
			if err != nil {
				return err
			}
			if current.Used {
				return models.ErrTokenAlreadyUsed
			}
			return models.ErrResetTokenExpired
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE users SET password = $1, updated_date = NOW() WHERE user_id = $2`,
			passwordHash, userID)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err != nil {
			return err
		} else if affected == 0 {
			return models.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PurgeResetTokens удаляет токены, срок действия которых истёк раньше before.
// Возвращает число удалённых строк.
func (s *Storage) PurgeResetTokens(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.PurgeResetTokens"

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expiry_date < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
