package oauth2

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/identityprovider"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
)

// AuthorizeHandler обрабатывает GET /oauth2/authorization/{provider}.
type AuthorizeHandler struct {
	log       *slog.Logger
	providers Providers
	states    StateStore
	stateTTL  time.Duration
}

// NewAuthorize создает новый экземпляр AuthorizeHandler.
func NewAuthorize(log *slog.Logger, providers Providers, states StateStore, stateTTL time.Duration) *AuthorizeHandler {
	return &AuthorizeHandler{
		log:       log,
		providers: providers,
		states:    states,
		stateTTL:  stateTTL,
	}
}

// ServeHTTP godoc
// @Summary Начать федеративный вход
// @Tags OAuth2
// @Param provider path string true "github или google"
// @Success 302
// @Failure 404 {object} response.ErrorResponse
// @Router /oauth2/authorization/{provider} [get]
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.oauth2.authorize"

	name := chi.URLParam(r, "provider")
	log := h.log.With(
		slog.String("op", op),
		slog.String("provider", name),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	provider, err := h.providers.Get(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown provider"))
		return
	}

	state, err := identityprovider.RandomString(stateBytes)
	if err != nil {
		log.Error("failed to generate state", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	nonce, err := identityprovider.RandomString(stateBytes)
	if err != nil {
		log.Error("failed to generate nonce", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	rec := stateRecord{Provider: provider.Name(), Nonce: nonce}
	if err := h.states.Set(r.Context(), stateKey(state), rec, h.stateTTL); err != nil {
		log.Error("failed to store state", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	http.Redirect(w, r, provider.AuthCodeURL(state, nonce), http.StatusFound)
}
