// Package forgotpassword реализует HTTP-обработчик запроса ссылки сброса пароля.
package forgotpassword

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
)

// Service выпускает токен сброса и отправляет письмо.
type Service interface {
	Issue(ctx context.Context, email string) error
}

// Handler обрабатывает POST /api/auth/public/forgot-password?email=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запрос сброса пароля
// @Description Отправляет на email ссылку с одноразовым токеном сброса пароля.
// @Tags Auth
// @Produce json
// @Param email query string true "Email пользователя"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Не указан email"
// @Failure 500 {object} response.ErrorResponse "Не удалось отправить письмо"
// @Router /api/auth/public/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is required"))
		return
	}

	if err := h.service.Issue(r.Context(), email); err != nil {
		log.Error("failed to issue password reset token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error sending password reset email"))
		return
	}

	render.JSON(w, r, response.Message("Password reset email sent!"))
}
