// Package remove реализует HTTP-обработчик удаления заметки.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Service удаляет заметку.
type Service interface {
	Delete(ctx context.Context, username string, id int64) error
}

// Handler обрабатывает DELETE /api/notes/{noteId}.
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
// @Summary Удалить заметку
// @Tags Notes
// @Security BearerAuth
// @Param noteId path int true "ID заметки"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /api/notes/{noteId} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notes.remove"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "noteId"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid note id"))
		return
	}

	if err := h.service.Delete(r.Context(), principal.Username, id); err != nil {
		if errors.Is(err, models.ErrNoteNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("Note not found"))
			return
		}
		log.Error("failed to delete note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete note"))
		return
	}
	render.NoContent(w, r)
}
