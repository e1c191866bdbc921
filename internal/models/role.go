package models

import "strings"

// AppRole — закрытое перечисление ролей приложения.
type AppRole string

const (
	// RoleUser — роль обычного пользователя.
	RoleUser AppRole = "ROLE_USER"
	// RoleAdmin — роль администратора.
	RoleAdmin AppRole = "ROLE_ADMIN"
)

// AllRoles перечисляет все известные роли в порядке создания при старте.
var AllRoles = []AppRole{RoleUser, RoleAdmin}

// Role — запись роли в хранилище.
type Role struct {
	ID   int64
	Name AppRole
}

// Valid сообщает, входит ли роль в перечисление.
func (r AppRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseAppRole разбирает полное имя роли (ROLE_USER, ROLE_ADMIN).
func ParseAppRole(name string) (AppRole, error) {
	role := AppRole(name)
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// ParseSignupRole сопоставляет роль из формы регистрации с перечислением.
// Пустое значение и "user" дают ROLE_USER, "admin" даёт ROLE_ADMIN.
func ParseSignupRole(value string) (AppRole, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}
