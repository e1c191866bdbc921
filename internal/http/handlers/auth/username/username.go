// Package username реализует HTTP-обработчик, возвращающий имя текущего пользователя.
package username

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
)

// Handler обрабатывает GET /api/auth/username.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Имя текущего пользователя
// @Tags Auth
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string "username"
// @Router /api/auth/username [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var name string
	if p := middlewarectx.PrincipalFromContext(r.Context()); p != nil {
		name = p.Username
	}
	render.PlainText(w, r, name)
}
