package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken создаёт токен со сроком жизни tokenTTL.
func (j *MakerImpl) GenerateToken(subject string, authorities []string) (string, error) {
	return j.GenerateTokenWithTTL(subject, authorities, j.tokenTTL)
}

// GenerateTokenWithTTL создаёт токен для subject, действительный ttl.
// При ttl <= 0 токен просрочен с момента выпуска.
func (j *MakerImpl) GenerateTokenWithTTL(subject string, authorities []string, ttl time.Duration) (string, error) {
	const op = "jwt.GenerateToken"

	if subject == "" {
		return "", fmt.Errorf("%s: empty subject", op)
	}
	now := j.now()
	claims := CustomClaims{
		Roles: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken разбирает токен, проверяет подпись и срок действия.
//
// Подпись проверяется раньше срока, поэтому подделанный просроченный
// токен даёт ErrSignatureInvalid, а не ErrTokenExpired.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrMalformedToken
	}
}
