package models

// Note — заметка пользователя.
type Note struct {
	ID            int64  `json:"id"`
	Content       string `json:"content"`
	OwnerUsername string `json:"ownerUsername"`
}
