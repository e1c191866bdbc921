// Package list реализует HTTP-обработчик списка заметок пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Service возвращает заметки пользователя.
type Service interface {
	List(ctx context.Context, username string) ([]*models.Note, error)
}

// Handler обрабатывает GET /api/notes.
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
// @Summary Заметки пользователя
// @Tags Notes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Note
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/notes [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notes.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal := middlewarectx.PrincipalFromContext(r.Context())
	if principal == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Unauthorized"))
		return
	}

	notes, err := h.service.List(r.Context(), principal.Username)
	if err != nil {
		log.Error("failed to list notes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list notes"))
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	render.JSON(w, r, notes)
}
