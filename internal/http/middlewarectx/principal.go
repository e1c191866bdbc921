// Package middlewarectx содержит HTTP middleware подсистемы идентификации:
// аутентификацию запроса по bearer-токену, шлюз авторизации и
// ограничение частоты запросов. Принципал запроса передаётся только
// через context.Context.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

type principalKey struct{}

// ContextWithPrincipal возвращает копию ctx с принципалом p.
func ContextWithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext возвращает принципал запроса или nil.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey{}).(*models.Principal)
	return p
}
