// Package jwt реализует выпуск и разбор подписанных HS256 токенов доступа.
//
// Токен несёт subject (username), время выпуска, срок действия и
// необязательный список полномочий. Ошибки разбора различаются:
// ErrMalformedToken, ErrSignatureInvalid и ErrTokenExpired.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки разбора токена.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token is expired")
)

// Maker описывает интерфейс выпуска и разбора токенов.
type Maker interface {
	// GenerateToken выпускает токен со сроком жизни по умолчанию.
	GenerateToken(subject string, authorities []string) (string, error)
	// GenerateTokenWithTTL выпускает токен с заданным сроком жизни.
	GenerateTokenWithTTL(subject string, authorities []string, ttl time.Duration) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// CustomClaims описывает данные, хранящиеся в токене.
type CustomClaims struct {
	Roles                []string `json:"roles,omitempty"` // Полномочия на момент выпуска
	jwt.RegisteredClaims          // sub, iat, exp
}

// MakerImpl реализует Maker на общем для процесса симметричном ключе.
// После создания не изменяется и безопасен для конкурентного чтения.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL по умолчанию.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL возвращает срок жизни токена по умолчанию.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
