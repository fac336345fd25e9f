package application

import (
	"time"

	"github.com/bnema/nova-runner/internal/domain"
)

// StatusToken describes the stored access token of an account.
type StatusToken struct {
	Valid     bool
	IssuedAt  time.Time
	ExpiresAt time.Time
	HasCookie bool
}

type Status struct {
	Account   domain.Account
	UserAgent string
	// Token is nil until the account has logged in once.
	Token *StatusToken
}
