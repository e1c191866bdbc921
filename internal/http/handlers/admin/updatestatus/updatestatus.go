// Package updatestatus реализует переключатели статуса учётной записи:
// блокировку, истечение срока, включение и истечение пароля.
package updatestatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Toggle применяет значение флага к пользователю.
type Toggle func(ctx context.Context, userID int64, value bool) error

// Handler обрабатывает один из PUT /api/admin/update-*-status.
type Handler struct {
	log     *slog.Logger
	toggle  Toggle
	param   string
	message string
}

// New создает обработчик, читающий булев параметр param из query.
// message возвращается клиенту при успехе.
func New(log *slog.Logger, toggle Toggle, param, message string) *Handler {
	return &Handler{
		log:     log,
		toggle:  toggle,
		param:   param,
		message: message,
	}
}

// ServeHTTP godoc
// @Summary Изменить статус учётной записи
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param userId query int true "ID пользователя"
// @Param lock query bool false "update-lock-status"
// @Param expire query bool false "update-expiry-status, update-credentials-expiry-status"
// @Param enabled query bool false "update-enabled-status"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/admin/update-lock-status [put]
// @Router /api/admin/update-expiry-status [put]
// @Router /api/admin/update-enabled-status [put]
// @Router /api/admin/update-credentials-expiry-status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updatestatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("param", h.param),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()
	userID, err := strconv.ParseInt(query.Get("userId"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid userId"))
		return
	}
	value, err := strconv.ParseBool(query.Get(h.param))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid "+h.param))
		return
	}

	if err := h.toggle(r.Context(), userID, value); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
			return
		}
		log.Error("failed to update account status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update account status"))
		return
	}
	render.JSON(w, r, response.Message(h.message))
}
