package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/db"
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// KeyPrefix namespaces cached filters in the shared keyspace.
const KeyPrefix = "query:"

// DefaultTTL is how long a cached parse survives in Redis.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for the shared cache tier (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores parsed filters in Redis keyed by normalized query text.
// Every failure degrades to a miss; the caller never sees a store error on
// the read or write path.
type Repo struct {
	store   store
	ttl     time.Duration
	lookups *prometheus.CounterVec
	logger  *zap.Logger
}

// New creates the shared tier.
// lookups is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, lookups *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{
		store:   s,
		ttl:     ttl,
		lookups: lookups,
		logger:  logger,
	}
}

// Get returns cached filters for a normalized key.
func (r *Repo) Get(ctx context.Context, normalized string) (query.Filters, bool) {
	key := KeyPrefix + normalized

	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to read cached filters", zap.String("key", key), zap.Error(err))
		}
		r.inc("miss")
		return query.Filters{}, false
	}

	var f query.Filters
	if err := json.Unmarshal(data, &f); err != nil {
		r.logger.Warn("Failed to decode cached filters", zap.String("key", key), zap.Error(err))
		r.inc("miss")
		return query.Filters{}, false
	}

	r.inc("hit")
	return f, true
}

// Put stores filters under a normalized key.
func (r *Repo) Put(ctx context.Context, normalized string, f query.Filters) {
	key := KeyPrefix + normalized

	data, err := json.Marshal(f)
	if err != nil {
		r.logger.Warn("Failed to encode filters", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to cache filters", zap.String("key", key), zap.Error(err))
	}
}

// Count returns the number of cached entries.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan cached filters: %w", err)
	}
	return len(keys), nil
}

// Clear deletes every cached entry and returns how many were removed.
func (r *Repo) Clear(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan cached filters: %w", err)
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete cached filters: %w", err)
	}
	return len(keys), nil
}

func (r *Repo) inc(result string) {
	if r.lookups != nil {
		r.lookups.WithLabelValues(result).Inc()
	}
}
