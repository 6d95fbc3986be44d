package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are the token fields the client reads. The signature is not
// checked; the backend remains the only authority on validity.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT without verifying it.
func ParseClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the token expired at or before now. Tokens
// without an expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
