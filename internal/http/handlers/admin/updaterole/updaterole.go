// Package updaterole реализует смену роли пользователя.
package updaterole

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

// Service меняет роль пользователя.
type Service interface {
	UpdateUserRole(ctx context.Context, userID int64, roleName string) error
}

// Handler обрабатывает PUT /api/admin/update-role?userId=&roleName=.
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
// @Summary Сменить роль пользователя
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param userId query int true "ID пользователя"
// @Param roleName query string true "ROLE_USER или ROLE_ADMIN"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/admin/update-role [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updaterole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid userId"))
		return
	}
	roleName := r.URL.Query().Get("roleName")

	err = h.service.UpdateUserRole(r.Context(), userID, roleName)
	switch {
	case err == nil:
		render.JSON(w, r, response.Message("User role updated"))
	case errors.Is(err, models.ErrUnknownRole), errors.Is(err, models.ErrRoleNotFound):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Role not found"))
	case errors.Is(err, models.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("User not found"))
	default:
		log.Error("failed to update user role", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update user role"))
	}
}
