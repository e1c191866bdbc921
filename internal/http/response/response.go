// Package response содержит типы и функции для формирования единых
// JSON-ответов HTTP-обработчиков: сообщений об успехе, ошибок и
// ошибок валидации.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// MessageResponse ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message" example:"User registered successfully!"`
}

// ErrorResponse ответ с ошибкой. Status всегда false.
type ErrorResponse struct {
	Status  bool   `json:"status" example:"false"`
	Message string `json:"message" example:"Bad credentials"`
}

// Message возвращает MessageResponse с сообщением msg.
func Message(msg string) MessageResponse {
	return MessageResponse{Message: msg}
}

// Error возвращает ErrorResponse с сообщением msg.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Status: false, Message: msg}
}

// ValidationError формирует ErrorResponse из ошибок валидации.
// Нарушения перечисляются через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(errsMsgs, ", "))
}
