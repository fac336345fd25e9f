package ports

import (
	"context"

	"github.com/bnema/nova-runner/internal/domain"
)

type SessionStore interface {
	Load(ctx context.Context) (map[string]domain.SessionRecord, error)
	Get(ctx context.Context, address string) (domain.SessionRecord, error)
	Save(ctx context.Context, address string, record domain.SessionRecord) error
}

type UserAgentStore interface {
	Get(ctx context.Context, address string) (string, error)
	Save(ctx context.Context, address string, userAgent string) error
}
