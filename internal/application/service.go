package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
)

// StatusService reports what the stores hold for each configured account.
type StatusService struct {
	sessions   ports.SessionStore
	userAgents ports.UserAgentStore
	clock      ports.Clock
}

func NewStatusService(sessions ports.SessionStore, userAgents ports.UserAgentStore, clock ports.Clock) *StatusService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &StatusService{
		sessions:   sessions,
		userAgents: userAgents,
		clock:      clock,
	}
}

func (s *StatusService) GetStatus(ctx context.Context, account domain.Account) (Status, error) {
	record, err := s.sessions.Get(ctx, account.Address)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return Status{}, fmt.Errorf("get session: %w", err)
	}

	status := Status{Account: account}
	if err == nil {
		status.Token = s.tokenStatus(record)
	}

	userAgent, err := s.userAgents.Get(ctx, account.Address)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return Status{}, fmt.Errorf("get user agent: %w", err)
	}
	status.UserAgent = userAgent

	return status, nil
}

func (s *StatusService) GetStatusAll(ctx context.Context, accounts []domain.Account) ([]Status, error) {
	records, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	statuses := make([]Status, 0, len(accounts))
	for _, account := range accounts {
		status := Status{Account: account}
		if record, ok := records[account.Address]; ok {
			status.Token = s.tokenStatus(record)
		}

		userAgent, err := s.userAgents.Get(ctx, account.Address)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("get user agent for account %d: %w", account.Label(), err)
		}
		status.UserAgent = userAgent

		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (s *StatusService) tokenStatus(record domain.SessionRecord) *StatusToken {
	expiresAt := record.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = domain.TokenExpiry(record.AccessToken)
	}

	return &StatusToken{
		Valid:     !record.Expired(s.clock.Now()),
		IssuedAt:  record.IssuedAt,
		ExpiresAt: expiresAt,
		HasCookie: record.Cookie != "",
	}
}
