// Package oauth2 реализует браузерную часть федеративного входа:
// перенаправление на страницу согласия провайдера и обработку обратного вызова.
//
// Состояние запроса (state и nonce) хранится в Redis и может быть
// использовано только один раз.
package oauth2

import (
	"context"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/identityprovider"
)

const (
	stateKeyPrefix = "oauth2:state:"
	stateBytes     = 32
)

// StateStore хранит одноразовые записи состояния.
type StateStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Take(ctx context.Context, key string, result any) (bool, error)
}

// Providers возвращает провайдера по имени.
type Providers interface {
	Get(name string) (identityprovider.Provider, error)
}

type stateRecord struct {
	Provider string `json:"provider"`
	Nonce    string `json:"nonce"`
}

func stateKey(state string) string {
	return stateKeyPrefix + state
}
