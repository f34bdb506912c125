package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avatarctic/ping-notifier/internal/core/domain/auth"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
)

// TokenConfig holds the shared secret and optional expected issuer/audience.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// TokenService verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenService(cfg *TokenConfig) *TokenService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &TokenService{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*auth.Claims)
	if !ok || !token.Valid {
		return nil, auth.ErrInvalidToken
	}
	if claims.Actor() == "" {
		return nil, fmt.Errorf("%w: token names no subject", auth.ErrInvalidToken)
	}
	return claims, nil
}

var _ ports.TokenVerifier = (*TokenService)(nil)
