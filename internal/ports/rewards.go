package ports

import (
	"context"

	"github.com/bnema/nova-runner/internal/domain"
)

// RewardsAPI is one account's authenticated view of the vendor API.
type RewardsAPI interface {
	LoadSession(ctx context.Context) error
	ResolveIP(ctx context.Context) (string, error)
	ValidToken(ctx context.Context, forceNew bool) (string, error)
	Profile(ctx context.Context) (domain.Profile, domain.Outcome)
	Balance(ctx context.Context) domain.Outcome
	CheckIn(ctx context.Context, txHash string) domain.Outcome
	CheckInCredit(ctx context.Context) domain.Outcome
	Tasks(ctx context.Context) ([]domain.Task, domain.Outcome)
	CompleteTask(ctx context.Context, taskID string) domain.Outcome
}
