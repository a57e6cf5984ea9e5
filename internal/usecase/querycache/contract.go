package querycache

import (
	"context"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// SharedTier is the cross-instance cache keyed by normalized text.
type SharedTier interface {
	Get(ctx context.Context, normalized string) (query.Filters, bool)
	Put(ctx context.Context, normalized string, f query.Filters)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
}

// FileTier persists the in-memory tier across restarts.
type FileTier interface {
	Load() (map[string]query.Filters, error)
	Save(entries map[string]query.Filters) error
	Exists() bool
}
