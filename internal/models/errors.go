package models

import "errors"

// Ошибки предметной области. Сравниваются через errors.Is.
var (
	ErrBadCredentials     = errors.New("bad credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUnknownRole        = errors.New("unknown role")
	ErrRoleNotAllowed     = errors.New("role is not allowed for self sign-up")
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrDuplicateEmail     = errors.New("email is already in use")
	ErrTokenNotFound      = errors.New("invalid password reset token")
	ErrTokenAlreadyUsed   = errors.New("password reset token has already been used")
	ErrResetTokenExpired  = errors.New("password reset token has expired")
	ErrNoteNotFound       = errors.New("note not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrMailDeliveryFailed = errors.New("mail delivery failed")
)
