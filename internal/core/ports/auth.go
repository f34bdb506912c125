package ports

import (
	"context"

	"github.com/avatarctic/ping-notifier/internal/core/domain/auth"
)

// TokenVerifier validates inbound bearer tokens.
type TokenVerifier interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}
