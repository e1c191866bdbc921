package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(testSecret, tokenTTL)

	tests := []struct {
		name        string
		subject     string
		authorities []string
	}{
		{
			name:        "admin user",
			subject:     "admin",
			authorities: []string{"ROLE_ADMIN"},
		},
		{
			name:        "regular user",
			subject:     "alice",
			authorities: []string{"ROLE_USER"},
		},
		{
			name:    "no authorities",
			subject: "user@domain.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.subject, tt.authorities)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, tt.authorities, claims.Roles)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_GenerateToken_EmptySubject(t *testing.T) {
	maker := NewJWTMaker(testSecret, time.Minute)

	_, err := maker.GenerateToken("", nil)
	assert.Error(t, err)
}

func TestJWTMaker_ParseToken_ZeroTTLIsExpired(t *testing.T) {
	maker := NewJWTMaker(testSecret, time.Minute)

	token, err := maker.GenerateTokenWithTTL("alice", []string{"ROLE_USER"}, 0)
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrSignatureInvalid)
}

func TestJWTMaker_ParseToken_ClockAdvancedPastExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	issuer := NewJWTMaker(testSecret, time.Hour, WithClock(func() time.Time { return now }))
	token, err := issuer.GenerateToken("alice", nil)
	require.NoError(t, err)

	beforeExpiry := NewJWTMaker(testSecret, time.Hour, WithClock(func() time.Time { return now.Add(59 * time.Minute) }))
	claims, err := beforeExpiry.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	atExpiry := NewJWTMaker(testSecret, time.Hour, WithClock(func() time.Time { return now.Add(time.Hour) }))
	_, err = atExpiry.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute)

	validToken, err := maker.GenerateToken("testuser", []string{"ROLE_USER"})
	require.NoError(t, err)

	otherKey, err := NewJWTMaker("another_secret", 15*time.Minute).GenerateToken("testuser", nil)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "testuser",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty token", token: "", wantErr: ErrMalformedToken},
		{name: "garbage", token: "invalid.token.here", wantErr: ErrMalformedToken},
		{name: "two segments", token: "abc.def", wantErr: ErrMalformedToken},
		{name: "wrong secret", token: otherKey, wantErr: ErrSignatureInvalid},
		{name: "alg none", token: noneToken, wantErr: ErrSignatureInvalid},
		{name: "truncated signature", token: validToken[:len(validToken)-5], wantErr: ErrSignatureInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTMaker_ParseToken_TamperedSegments(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute)
	token, err := maker.GenerateToken("alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	for segment := 0; segment < 3; segment++ {
		// последний символ сегмента может нести неиспользуемые биты
		for i := 0; i < len(parts[segment])-1; i++ {
			mutated := make([]string, 3)
			copy(mutated, parts)
			mutated[segment] = flipChar(parts[segment], i)

			claims, err := maker.ParseToken(strings.Join(mutated, "."))
			require.Error(t, err, "segment %d index %d", segment, i)
			assert.Nil(t, claims)
			assert.True(t,
				errorIsAny(err, ErrSignatureInvalid, ErrMalformedToken),
				"segment %d index %d: unexpected error %v", segment, i, err)
		}
	}
}

func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
