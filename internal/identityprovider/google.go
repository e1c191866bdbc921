package identityprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// GoogleProvider выполняет вход через OpenID Connect Google и проверяет
// ID-токен. Утверждения: sub, email и прочие поля ID-токена.
type GoogleProvider struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider получает документ обнаружения Google и создаёт провайдера.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	const op = "identityprovider.NewGoogleProvider"

	discovered, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     discovered.Endpoint(),
	}
	return newGoogleProvider(config, discovered.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func newGoogleProvider(config *oauth2.Config, verifier *oidc.IDTokenVerifier) *GoogleProvider {
	return &GoogleProvider{config: config, verifier: verifier}
}

// Name возвращает имя провайдера.
func (p *GoogleProvider) Name() string {
	return Google
}

// AuthCodeURL возвращает адрес авторизации с nonce.
func (p *GoogleProvider) AuthCodeURL(state, nonce string) string {
	return p.config.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Identify обменивает код на токены и проверяет подпись, аудиторию,
// срок и nonce ID-токена. Email без email_verified=true не принимается:
// по нему выполняется сопоставление с локальной учётной записью.
func (p *GoogleProvider) Identify(ctx context.Context, code, nonce string) (Claims, error) {
	const op = "identityprovider.Google.Identify"

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchange: %w", op, err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("id_token missing from token response"))
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%s: verify: %w", op, err)
	}
	if idToken.Nonce != nonce {
		return nil, fmt.Errorf("%s: %w", op, errors.New("nonce mismatch"))
	}

	claims := Claims{}
	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if verified, _ := claims["email_verified"].(bool); !verified {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailNotVerified)
	}
	return claims, nil
}
