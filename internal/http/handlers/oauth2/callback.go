package oauth2

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/secure-notes/internal/identityprovider"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/services/federated"
)

// Reconciler сопоставляет утверждения провайдера с локальной учётной записью.
type Reconciler interface {
	Reconcile(ctx context.Context, provider string, claims identityprovider.Claims) (*federated.Result, error)
}

// CallbackHandler обрабатывает GET /oauth2/callback/{provider}.
// Результат всегда передаётся фронтенду редиректом: токен в query
// при успехе, error=oauth2 при любой ошибке.
type CallbackHandler struct {
	log         *slog.Logger
	providers   Providers
	states      StateStore
	reconciler  Reconciler
	frontendURL string
}

// NewCallback создает новый экземпляр CallbackHandler.
func NewCallback(log *slog.Logger, providers Providers, states StateStore, reconciler Reconciler, frontendURL string) *CallbackHandler {
	return &CallbackHandler{
		log:         log,
		providers:   providers,
		states:      states,
		reconciler:  reconciler,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// ServeHTTP godoc
// @Summary Обратный вызов провайдера
// @Tags OAuth2
// @Param provider path string true "github или google"
// @Param code query string true "Код авторизации"
// @Param state query string true "Состояние"
// @Success 302
// @Router /oauth2/callback/{provider} [get]
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.oauth2.callback"

	name := chi.URLParam(r, "provider")
	log := h.log.With(
		slog.String("op", op),
		slog.String("provider", name),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	fail := func(reason string, err error) {
		if err != nil {
			log.Warn(reason, sl.Err(err))
		} else {
			log.Warn(reason)
		}
		http.Redirect(w, r, h.frontendURL+"/login?error=oauth2", http.StatusFound)
	}

	provider, err := h.providers.Get(name)
	if err != nil {
		fail("unknown provider", err)
		return
	}

	query := r.URL.Query()
	if e := query.Get("error"); e != "" {
		fail("provider returned error: "+e, nil)
		return
	}
	state, code := query.Get("state"), query.Get("code")
	if state == "" || code == "" {
		fail("missing state or code", nil)
		return
	}

	var rec stateRecord
	found, err := h.states.Take(r.Context(), stateKey(state), &rec)
	if err != nil {
		fail("failed to load state", err)
		return
	}
	if !found || rec.Provider != provider.Name() {
		fail("unknown or replayed state", nil)
		return
	}

	claims, err := provider.Identify(r.Context(), code, rec.Nonce)
	if err != nil {
		fail("failed to identify user", err)
		return
	}

	result, err := h.reconciler.Reconcile(r.Context(), provider.Name(), claims)
	if err != nil {
		fail("failed to reconcile account", err)
		return
	}

	log.Info("federated login succeeded",
		slog.String("username", result.Principal.Username),
		slog.Bool("created", result.Created),
	)
	target := h.frontendURL + "/oauth2/redirect?token=" + url.QueryEscape(result.Token)
	http.Redirect(w, r, target, http.StatusFound)
}
