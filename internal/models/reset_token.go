package models

import "time"

// PasswordResetToken — одноразовый токен сброса пароля.
type PasswordResetToken struct {
	ID        int64
	Token     string    // Случайное непрозрачное значение
	ExpiresAt time.Time // Момент истечения
	Used      bool      // Монотонно false -> true
	UserID    int64
}

// Redeemable сообщает, можно ли погасить токен в момент now.
func (t *PasswordResetToken) Redeemable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
