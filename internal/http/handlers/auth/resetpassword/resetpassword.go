// Package resetpassword реализует HTTP-обработчик погашения токена сброса пароля.
package resetpassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const maxPasswordLen = 72

// Service погашает токен и меняет пароль.
type Service interface {
	Redeem(ctx context.Context, token, newPassword string) error
}

// Handler обрабатывает POST /api/auth/public/reset-password?token=&newPassword=.
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
// @Summary Сброс пароля
// @Description Погашает одноразовый токен сброса и задаёт новый пароль.
// @Tags Auth
// @Produce json
// @Param token query string true "Токен сброса"
// @Param newPassword query string true "Новый пароль"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Токен не найден, использован или истёк"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/auth/public/reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()
	token, newPassword := query.Get("token"), query.Get("newPassword")
	if token == "" || newPassword == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("token and newPassword are required"))
		return
	}
	if len(newPassword) > maxPasswordLen {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("password is too long"))
		return
	}

	if err := h.service.Redeem(r.Context(), token, newPassword); err != nil {
		for _, known := range []error{models.ErrTokenNotFound, models.ErrTokenAlreadyUsed, models.ErrResetTokenExpired} {
			if errors.Is(err, known) {
				log.Info("password reset rejected", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(known.Error()))
				return
			}
		}
		log.Error("failed to reset password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("password reset")
	render.JSON(w, r, response.Message("Password reset successful"))
}
