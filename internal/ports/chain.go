package ports

import (
	"context"

	"github.com/bnema/nova-runner/internal/domain"
)

type MessageSigner interface {
	SignMessage(privateKey string, message string) (string, error)
}

// CheckInSubmitter sends the daily on-chain check-in for an account and
// returns the confirmed transaction hash.
type CheckInSubmitter interface {
	SubmitCheckIn(ctx context.Context, account domain.Account) (string, error)
}
