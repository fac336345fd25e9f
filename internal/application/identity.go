package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
	"github.com/brianvoe/gofakeit/v6"
)

// IdentityService hands every wallet a stable user agent. The first one
// generated for an address is persisted and reused on every later run.
type IdentityService struct {
	store    ports.UserAgentStore
	generate func() string
}

func NewIdentityService(store ports.UserAgentStore, generate func() string) *IdentityService {
	if generate == nil {
		generate = gofakeit.UserAgent
	}

	return &IdentityService{store: store, generate: generate}
}

func (s *IdentityService) UserAgent(ctx context.Context, account domain.Account) (string, error) {
	userAgent, err := s.store.Get(ctx, account.Address)
	if err == nil && strings.TrimSpace(userAgent) != "" {
		return userAgent, nil
	}
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return "", fmt.Errorf("get user agent: %w", err)
	}

	userAgent = s.generate()
	if err := s.store.Save(ctx, account.Address, userAgent); err != nil {
		return "", fmt.Errorf("save user agent: %w", err)
	}

	return userAgent, nil
}

// AssignUserAgents resolves the user agent of every account, keyed by address.
func (s *IdentityService) AssignUserAgents(ctx context.Context, accounts []domain.Account) (map[string]string, error) {
	assigned := make(map[string]string, len(accounts))
	for _, account := range accounts {
		userAgent, err := s.UserAgent(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", account.Label(), err)
		}
		assigned[account.Address] = userAgent
	}

	return assigned, nil
}
