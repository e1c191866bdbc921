package models

import "time"

// RoleDTO представление роли в ответах API.
type RoleDTO struct {
	RoleID   int64   `json:"roleId"`
	RoleName AppRole `json:"roleName"`
}

// UserDTO представление пользователя для администратора.
// Хэш пароля и секрет второго фактора не раскрываются.
type UserDTO struct {
	UserID                int64      `json:"userId"`
	UserName              string     `json:"userName"`
	Email                 string     `json:"email"`
	AccountNonLocked      bool       `json:"accountNonLocked"`
	AccountNonExpired     bool       `json:"accountNonExpired"`
	CredentialsNonExpired bool       `json:"credentialsNonExpired"`
	Enabled               bool       `json:"enabled"`
	CredentialsExpiryDate *time.Time `json:"credentialsExpiryDate"`
	AccountExpiryDate     *time.Time `json:"accountExpiryDate"`
	TwoFactorEnabled      bool       `json:"isTwoFactorEnabled"`
	SignUpMethod          string     `json:"signUpMethod"`
	Role                  RoleDTO    `json:"role"`
	CreatedDate           time.Time  `json:"createdDate"`
	UpdatedDate           time.Time  `json:"updatedDate"`
}

// UserInfo ответ GET /api/auth/user.
type UserInfo struct {
	ID                    int64      `json:"id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	AccountNonLocked      bool       `json:"accountNonLocked"`
	AccountNonExpired     bool       `json:"accountNonExpired"`
	CredentialsNonExpired bool       `json:"credentialsNonExpired"`
	Enabled               bool       `json:"enabled"`
	CredentialsExpiryDate *time.Time `json:"credentialsExpiryDate"`
	AccountExpiryDate     *time.Time `json:"accountExpiryDate"`
	TwoFactorEnabled      bool       `json:"isTwoFactorEnabled"`
	Roles                 []string   `json:"roles"`
}

// NewRoleDTO преобразует роль хранилища.
func NewRoleDTO(r Role) RoleDTO {
	return RoleDTO{RoleID: r.ID, RoleName: r.Name}
}

// NewUserDTO преобразует пользователя в представление для администратора.
func NewUserDTO(u *User) UserDTO {
	return UserDTO{
		UserID:                u.ID,
		UserName:              u.Username,
		Email:                 u.Email,
		AccountNonLocked:      u.AccountNonLocked,
		AccountNonExpired:     u.AccountNonExpired,
		CredentialsNonExpired: u.CredentialsNonExpired,
		Enabled:               u.Enabled,
		CredentialsExpiryDate: u.CredentialsExpiryDate,
		AccountExpiryDate:     u.AccountExpiryDate,
		TwoFactorEnabled:      u.TwoFactorEnabled,
		SignUpMethod:          u.SignUpMethod,
		Role:                  NewRoleDTO(u.Role),
		CreatedDate:           u.CreatedAt,
		UpdatedDate:           u.UpdatedAt,
	}
}

// NewUserInfo собирает ответ с данными текущего пользователя.
func NewUserInfo(u *User) UserInfo {
	return UserInfo{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		AccountNonLocked:      u.AccountNonLocked,
		AccountNonExpired:     u.AccountNonExpired,
		CredentialsNonExpired: u.CredentialsNonExpired,
		Enabled:               u.Enabled,
		CredentialsExpiryDate: u.CredentialsExpiryDate,
		AccountExpiryDate:     u.AccountExpiryDate,
		TwoFactorEnabled:      u.TwoFactorEnabled,
		Roles:                 u.Authorities(),
	}
}
