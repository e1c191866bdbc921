package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/metrics"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const bearerPrefix = "Bearer "

// TokenParser разбирает bearer-токен.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// PrincipalLoader строит принципал по текущему состоянию пользователя.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, username string) (*models.Principal, error)
}

// Authenticate извлекает токен из заголовка Authorization и, если он
// валиден, кладёт в контекст принципал, загруженный из хранилища.
//
// Отсутствующий, просроченный или поддельный токен не прерывает запрос:
// он продолжается без принципала, решение принимает Gate.
func Authenticate(tokens TokenParser, principals PrincipalLoader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			tokenStr, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				reason := rejectionReason(err)
				metrics.TokenRejections.WithLabelValues(reason).Inc()
				log.Debug("bearer token rejected", slog.String("reason", reason))
				next.ServeHTTP(w, r)
				return
			}

			principal, err := principals.LoadPrincipal(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, models.ErrUnauthenticated) {
					metrics.TokenRejections.WithLabelValues("inactive_user").Inc()
					log.Debug("token subject cannot authenticate")
					next.ServeHTTP(w, r)
					return
				}
				log.Error("failed to load principal", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return "signature_invalid"
	default:
		return "malformed"
	}
}
