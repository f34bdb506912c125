package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/ping-notifier/internal/application/services"
	"github.com/avatarctic/ping-notifier/internal/core/domain/auth"
)

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims *auth.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() *auth.Claims {
	now := time.Now()
	return &auth.Claims{
		Name:   "Alice",
		Groups: []string{"pilots"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "neucore",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestValidateToken_Valid(t *testing.T) {
	svc := impl.NewTokenService(&impl.TokenConfig{Secret: "s3cret", Issuer: "neucore"})

	claims, err := svc.ValidateToken(context.Background(), signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "Alice", claims.Actor())
	assert.Equal(t, []string{"pilots"}, claims.Groups)
}

func TestValidateToken_ActorFallsBackToSubject(t *testing.T) {
	svc := impl.NewTokenService(&impl.TokenConfig{Secret: "s3cret"})
	c := validClaims()
	c.Name = ""

	claims, err := svc.ValidateToken(context.Background(), signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), c))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Actor())
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := impl.NewTokenService(&impl.TokenConfig{Secret: "s3cret", Issuer: "neucore"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "elsewhere"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	anonymous := validClaims()
	anonymous.Name, anonymous.Subject = "", ""

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), expired),
		"issuer":       signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), wrongIssuer),
		"no expiry":    signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), noExpiry),
		"hs512":        signToken(t, jwt.SigningMethodHS512, []byte("s3cret"), validClaims()),
		"anonymous":    signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), anonymous),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(context.Background(), token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
