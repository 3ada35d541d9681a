package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the parts of the backend's access token the console shows.
type TokenClaims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// ReadTokenClaims decodes the backend token without verifying it. The console
// has no signing key; the backend remains the only judge of validity.
func ReadTokenClaims(tokenStr string) (TokenClaims, error) {
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// ExpiresAtTime returns nil when the token carries no exp claim.
func (c TokenClaims) ExpiresAtTime() *time.Time {
	if c.ExpiresAt == nil {
		return nil
	}
	t := c.ExpiresAt.Time
	return &t
}
