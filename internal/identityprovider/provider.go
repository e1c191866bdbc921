// Package identityprovider реализует обмен кода авторизации на
// подтверждённые утверждения внешних провайдеров (GitHub, Google).
package identityprovider

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
)

// Имена поддерживаемых провайдеров. Используются и как sign_up_method.
const (
	GitHub = "github"
	Google = "google"
)

var (
	// ErrUnknownProvider возвращается для незарегистрированного провайдера.
	ErrUnknownProvider = errors.New("unknown identity provider")
	// ErrEmailNotVerified — провайдер не подтвердил владение email.
	ErrEmailNotVerified = errors.New("email is not verified by provider")
)

// Claims — утверждения, подтверждённые провайдером.
type Claims map[string]any

// Provider описывает внешний источник идентичности.
type Provider interface {
	// Name возвращает имя провайдера.
	Name() string
	// AuthCodeURL возвращает адрес страницы согласия провайдера.
	AuthCodeURL(state, nonce string) string
	// Identify обменивает код авторизации на утверждения о пользователе.
	Identify(ctx context.Context, code, nonce string) (Claims, error)
}

// Registry — набор настроенных провайдеров по имени.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry собирает реестр из провайдеров.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get возвращает провайдера по имени.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names возвращает имена провайдеров в алфавитном порядке.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RandomString возвращает криптографически случайную строку из n байт в base64url.
func RandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
