package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the claims this service reads from an inbound bearer token.
// Tokens are issued by the operator's identity provider.
type Claims struct {
	Name   string   `json:"name,omitempty"`
	Groups []string `json:"groups,omitempty"`

	jwt.RegisteredClaims
}

// Actor names the caller for audit columns such as updated_by and sent_by:
// the display name when present, else the subject.
func (c *Claims) Actor() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return c.Subject
}
