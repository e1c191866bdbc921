package models

// UserFlag — изменяемый администратором флаг состояния учётной записи.
type UserFlag string

// Флаги состояния учётной записи.
const (
	FlagAccountNonLocked      UserFlag = "account_non_locked"
	FlagAccountNonExpired     UserFlag = "account_non_expired"
	FlagCredentialsNonExpired UserFlag = "credentials_non_expired"
	FlagEnabled               UserFlag = "enabled"
)
