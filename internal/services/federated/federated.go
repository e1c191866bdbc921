// Package federated сопоставляет результат входа через внешнего провайдера
// с локальной учётной записью и выпускает токен доступа.
//
// Поиск ведётся по email. Существующая учётная запись переиспользуется без
// изменений; новая создаётся с ролью ROLE_USER и без пароля. Гонку двух
// одновременных первых входов разрешает уникальный индекс на email:
// проигравшая вставка повторяется как путь "найден".
package federated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/secure-notes/internal/identityprovider"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/metrics"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// ErrMissingClaim возвращается, если провайдер не вернул обязательное утверждение.
var ErrMissingClaim = errors.New("required provider claim is missing")

const maxCreateAttempts = 3

// maxUsernameLen совпадает с users.username VARCHAR(50).
const maxUsernameLen = 50

// UserRepository описывает контракт хранилища для сопоставления учётных записей.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetRoleByName(ctx context.Context, name models.AppRole) (*models.Role, error)
	CreateUser(ctx context.Context, user models.User) (int64, error)
}

// Identity — email, имя и идентификатор, извлечённые из утверждений провайдера.
type Identity struct {
	Email      string
	Username   string
	ProviderID string
}

// Result — итог сопоставления.
type Result struct {
	Token     string
	Principal models.Principal
	Created   bool
}

// Reconciler выполняет find-or-create и выпуск токена.
type Reconciler struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
}

// NewReconciler создаёт Reconciler.
func NewReconciler(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Reconciler {
	return &Reconciler{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

// ExtractIdentity извлекает email и имя пользователя по форме утверждений провайдера.
//
// GitHub: login, id, email. Google: email, sub; именем служит локальная часть email.
func ExtractIdentity(provider string, claims identityprovider.Claims) (Identity, error) {
	const op = "federated.ExtractIdentity"

	var id Identity
	id.Email = strings.TrimSpace(claimString(claims, "email"))
	switch provider {
	case identityprovider.GitHub:
		id.Username = claimString(claims, "login")
		id.ProviderID = claimString(claims, "id")
	case identityprovider.Google:
		id.ProviderID = claimString(claims, "sub")
		if at := strings.IndexByte(id.Email, '@'); at > 0 {
			id.Username = truncateRunes(id.Email[:at], maxUsernameLen)
		}
	default:
		return Identity{}, fmt.Errorf("%s: %w: %s", op, identityprovider.ErrUnknownProvider, provider)
	}

	if id.Email == "" {
		return Identity{}, fmt.Errorf("%s: %w: email", op, ErrMissingClaim)
	}
	if id.Username == "" {
		return Identity{}, fmt.Errorf("%s: %w: username", op, ErrMissingClaim)
	}
	return id, nil
}

// Reconcile находит или создаёт пользователя по утверждениям провайдера
// и выпускает токен с его текущими полномочиями.
func (r *Reconciler) Reconcile(ctx context.Context, provider string, claims identityprovider.Claims) (*Result, error) {
	const op = "federated.Reconcile"

	identity, err := ExtractIdentity(provider, claims)
	if err != nil {
		metrics.FederatedLogins.WithLabelValues(provider, "error").Inc()
		return nil, err
	}

	user, created, err := r.findOrCreate(ctx, provider, identity)
	if err != nil {
		metrics.FederatedLogins.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.CanAuthenticate() {
		metrics.FederatedLogins.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	authorities := user.Authorities()
	token, err := r.jwtMaker.GenerateToken(user.Username, authorities)
	if err != nil {
		metrics.FederatedLogins.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	outcome := "found"
	if created {
		outcome = "created"
	}
	metrics.FederatedLogins.WithLabelValues(provider, outcome).Inc()

	return &Result{
		Token: token,
		Principal: models.Principal{
			UserID:      user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Authorities: authorities,
		},
		Created: created,
	}, nil
}

func (r *Reconciler) findOrCreate(ctx context.Context, provider string, identity Identity) (*models.User, bool, error) {
	user, err := r.users.GetUserByEmail(ctx, identity.Email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, false, err
	}

	role, err := r.users.GetRoleByName(ctx, models.RoleUser)
	if err != nil {
		if errors.Is(err, models.ErrRoleNotFound) {
			r.log.Error("default role is missing, roles must be seeded at startup",
				slog.String("role", string(models.RoleUser)), sl.Err(err))
		}
		return nil, false, err
	}

	username := identity.Username
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		candidate := models.NewActiveUser(username, identity.Email, *role, provider, r.now())
		id, err := r.users.CreateUser(ctx, candidate)
		switch {
		case err == nil:
			candidate.ID = id
			r.log.Info("federated user created",
				slog.String("provider", provider), slog.Int64("user_id", id))
			return &candidate, true, nil
		case errors.Is(err, models.ErrDuplicateEmail):
			// параллельный вход уже создал учётную запись
			existing, err := r.users.GetUserByEmail(ctx, identity.Email)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		case errors.Is(err, models.ErrDuplicateUsername):
			username = disambiguate(identity, attempt)
		default:
			return nil, false, err
		}
	}
	return nil, false, models.ErrDuplicateUsername
}

// disambiguate строит альтернативное имя, если исходное занято другой учётной записью.
func disambiguate(identity Identity, attempt int) string {
	suffix := identity.ProviderID
	if suffix == "" || attempt > 0 {
		suffix = strconv.FormatInt(time.Now().UnixNano()%1_000_000, 10)
	}
	base := truncateRunes(identity.Username, maxUsernameLen-utf8.RuneCountInString(suffix)-1)
	return base + "_" + suffix
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func claimString(claims identityprovider.Claims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
