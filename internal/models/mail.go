package models

// PasswordResetEmail сообщение очереди писем со ссылкой сброса пароля.
type PasswordResetEmail struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}
