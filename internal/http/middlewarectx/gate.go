package middlewarectx

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/metrics"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Access требование правила шлюза.
type Access int

// Виды доступа.
const (
	// Authenticated пропускает любой принципал.
	Authenticated Access = iota
	// Public пропускает всех.
	Public
	// HasAuthority требует полномочие Rule.Authority.
	HasAuthority
)

// Rule правило шлюза. Pattern либо точный путь, либо префикс с суффиксом "/**".
type Rule struct {
	Pattern   string
	Access    Access
	Authority string
}

// DefaultRules таблица доступа приложения. Правила проверяются по порядку,
// срабатывает первое подходящее.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/api/admin/**", Access: HasAuthority, Authority: string(models.RoleAdmin)},
		{Pattern: "/api/auth/public/**", Access: Public},
		{Pattern: "/oauth2/**", Access: Public},
		{Pattern: "/metrics", Access: Public},
		{Pattern: "/docs/**", Access: Public},
		{Pattern: "/health", Access: Public},
		{Pattern: "/**", Access: Authenticated},
	}
}

func (r Rule) matches(path string) bool {
	prefix, ok := strings.CutSuffix(r.Pattern, "/**")
	if !ok {
		return path == r.Pattern
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Gate применяет таблицу rules к принципалу запроса. Запрос без принципала
// на закрытый путь получает 401, принципал без нужного полномочия 403.
// Путь, не попавший ни под одно правило, считается закрытым.
func Gate(rules []Rule, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule := Rule{Access: Authenticated}
			for _, candidate := range rules {
				if candidate.matches(r.URL.Path) {
					rule = candidate
					break
				}
			}
			if rule.Access == Public {
				next.ServeHTTP(w, r)
				return
			}

			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				deny(w, r, log, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if rule.Access == HasAuthority && !principal.HasAuthority(rule.Authority) {
				deny(w, r, log, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, msg string) {
	metrics.AccessDenied.WithLabelValues(strconv.Itoa(status)).Inc()
	log.Debug("access denied",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	w.WriteHeader(status)
	render.JSON(w, r, response.Error(msg))
}
