// Package models содержит доменные модели сервиса заметок: пользователей,
// роли, токены сброса пароля, заметки и принципал запроса, а также
// общую таксономию ошибок, используемую хранилищем и сервисами.
package models

import "time"

// SignUpMethodEmail — способ регистрации через форму signup.
const SignUpMethodEmail = "email"

// User представляет учётную запись пользователя.
type User struct {
	ID                    int64      // Уникальный идентификатор пользователя
	Username              string     // Имя пользователя (уникальное)
	Email                 string     // Электронная почта (уникальная)
	PasswordHash          string     // Хэш пароля, пустой у федеративных учёток
	Role                  Role       // Назначенная роль
	AccountNonLocked      bool       // Учётная запись не заблокирована
	AccountNonExpired     bool       // Учётная запись не просрочена
	CredentialsNonExpired bool       // Пароль не просрочен
	Enabled               bool       // Учётная запись включена
	CredentialsExpiryDate *time.Time // Дата истечения пароля
	AccountExpiryDate     *time.Time // Дата истечения учётной записи
	TwoFactorSecret       string
	TwoFactorEnabled      bool
	SignUpMethod          string // "email" или имя провайдера
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasPassword сообщает, задан ли у пользователя локальный пароль.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// CanAuthenticate сообщает, может ли пользователь проходить аутентификацию.
func (u *User) CanAuthenticate() bool {
	return u.Enabled && u.AccountNonLocked
}

// Authorities возвращает набор полномочий пользователя.
func (u *User) Authorities() []string {
	return []string{string(u.Role.Name)}
}

// NewActiveUser заполняет флаги и даты новой учётной записи:
// всё активно, сроки действия истекают через год.
func NewActiveUser(username, email string, role Role, signUpMethod string, now time.Time) User {
	expiry := now.AddDate(1, 0, 0)
	credentialsExpiry := expiry
	return User{
		Username:              username,
		Email:                 email,
		Role:                  role,
		AccountNonLocked:      true,
		AccountNonExpired:     true,
		CredentialsNonExpired: true,
		Enabled:               true,
		CredentialsExpiryDate: &credentialsExpiry,
		AccountExpiryDate:     &expiry,
		TwoFactorEnabled:      false,
		SignUpMethod:          signUpMethod,
	}
}
