package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type SessionRecord struct {
	AccessToken string
	Cookie      string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Profile     map[string]any
}

// Expired reports whether the access token can no longer be used at now.
// Without a stored expiry the token's exp claim decides; tokens that carry no
// readable expiry are treated as expired.
func (s SessionRecord) Expired(now time.Time) bool {
	if s.AccessToken == "" {
		return true
	}

	expiresAt := s.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = TokenExpiry(s.AccessToken)
	}
	if expiresAt.IsZero() {
		return true
	}

	return !expiresAt.After(now)
}

// TokenExpiry returns the exp claim of a JWT without verifying its signature,
// or the zero time when the token is not a JWT or carries no exp.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, ok := claims["exp"]
	if !ok {
		return time.Time{}
	}

	switch v := exp.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	default:
		return time.Time{}
	}
}
