// Package listroles реализует выдачу справочника ролей.
package listroles

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Service возвращает роли.
type Service interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
}

// Handler обрабатывает GET /api/admin/roles.
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
// @Summary Список ролей
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.RoleDTO
// @Router /api/admin/roles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.listroles"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		log.Error("failed to list roles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list roles"))
		return
	}

	out := make([]models.RoleDTO, 0, len(roles))
	for _, role := range roles {
		out = append(out, models.NewRoleDTO(role))
	}
	render.JSON(w, r, out)
}
