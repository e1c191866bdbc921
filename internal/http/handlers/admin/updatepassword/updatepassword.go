// Package updatepassword реализует смену пароля пользователя администратором.
package updatepassword

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

// bcrypt игнорирует байты после 72-го.
const maxPasswordLen = 72

// Service задаёт пароль.
type Service interface {
	UpdatePassword(ctx context.Context, userID int64, newPassword string) error
}

// Handler обрабатывает PUT /api/admin/update-password?userId=&password=.
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
// @Summary Сменить пароль пользователя
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param userId query int true "ID пользователя"
// @Param password query string true "Новый пароль"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/admin/update-password [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updatepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()
	userID, err := strconv.ParseInt(query.Get("userId"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid userId"))
		return
	}
	password := query.Get("password")
	if password == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("password is required"))
		return
	}
	if len(password) > maxPasswordLen {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("password is too long"))
		return
	}

	if err := h.service.UpdatePassword(r.Context(), userID, password); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
			return
		}
		log.Error("failed to update password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update password"))
		return
	}
	render.JSON(w, r, response.Message("Password updated"))
}
