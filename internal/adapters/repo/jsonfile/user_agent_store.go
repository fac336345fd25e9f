package jsonfile

import (
	"context"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
)

type UserAgentStore struct {
	file *file
}

var _ ports.UserAgentStore = (*UserAgentStore)(nil)

func NewUserAgentStore(path string) (*UserAgentStore, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	return &UserAgentStore{file: f}, nil
}

func (s *UserAgentStore) Get(ctx context.Context, address string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.file.mu.RLock()
	defer s.file.mu.RUnlock()

	agents, err := s.readAgents()
	if err != nil {
		return "", err
	}

	agent, ok := agents[address]
	if !ok || agent == "" {
		return "", domain.ErrSessionNotFound
	}

	return agent, nil
}

func (s *UserAgentStore) Save(ctx context.Context, address string, userAgent string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	agents, err := s.readAgents()
	if err != nil {
		return err
	}

	agents[address] = userAgent

	return s.file.write(agents)
}

func (s *UserAgentStore) readAgents() (map[string]string, error) {
	agents := map[string]string{}
	if err := s.file.read(&agents); err != nil {
		return nil, err
	}
	if agents == nil {
		agents = map[string]string{}
	}

	return agents, nil
}
