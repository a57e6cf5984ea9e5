// Package querycache layers the parse cache: a shared Redis tier, an
// in-process map and a JSON file that snapshots the map.
package querycache

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
	"github.com/kailas-cloud/usersearch/internal/normalize"
)

// DefaultFlushEvery is the number of writes between file snapshots.
const DefaultFlushEvery = 10

// Tier names used in metrics and logs.
const (
	TierShared = "redis"
	TierMemory = "memory"
)

// Stats describes the current cache state.
type Stats struct {
	MemoryEntries   int
	SharedEnabled   bool
	SharedReachable bool
	SharedEntries   int
	FileEnabled     bool
	FilePresent     bool
	PendingWrites   int
}

// Cleared reports how many entries Clear removed per tier.
type Cleared struct {
	Shared int
	Memory int
}

// Service is the tiered cache. shared and file may be nil; the memory tier
// is always present. Safe for concurrent use.
type Service struct {
	shared     SharedTier
	file       FileTier
	flushEvery int
	lookups    *prometheus.CounterVec
	logger     *zap.Logger

	mu     sync.RWMutex
	mem    map[string]query.Filters
	writes int

	flushMu sync.Mutex
}

// New creates a cache service.
// lookups is a counter vec with labels "tier" and "result", passed explicitly.
func New(
	shared SharedTier,
	file FileTier,
	flushEvery int,
	lookups *prometheus.CounterVec,
	logger *zap.Logger,
) *Service {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	return &Service{
		shared:     shared,
		file:       file,
		flushEvery: flushEvery,
		lookups:    lookups,
		logger:     logger,
		mem:        make(map[string]query.Filters),
	}
}

// Open loads the file tier into memory. A corrupt file is logged and the
// cache starts empty; it will be overwritten on the next flush.
func (s *Service) Open(_ context.Context) error {
	if s.file == nil {
		return nil
	}
	entries, err := s.file.Load()
	if err != nil {
		s.logger.Warn("Failed to load query cache file, starting empty", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	for k, v := range entries {
		if _, ok := s.mem[k]; !ok {
			s.mem[k] = v
		}
	}
	n := len(s.mem)
	s.mu.Unlock()

	s.logger.Info("Query cache loaded", zap.Int("entries", n))
	return nil
}

// Get looks up raw query text: shared tier by normalized key, then memory by
// exact key, then memory by normalized key. Hits backfill the memory tier.
func (s *Service) Get(ctx context.Context, raw string) (query.Filters, bool) {
	normalized := normalize.Normalize(raw)

	if s.shared != nil {
		if f, ok := s.shared.Get(ctx, normalized); ok {
			s.storeMemory(raw, normalized, f)
			return f, true
		}
	}

	s.mu.RLock()
	f, exact := s.mem[raw]
	ok := exact
	if !ok {
		f, ok = s.mem[normalized]
	}
	s.mu.RUnlock()

	if !ok {
		s.inc(TierMemory, "miss")
		return query.Filters{}, false
	}
	s.inc(TierMemory, "hit")
	if !exact {
		s.storeMemory(raw, normalized, f)
	}
	return f, true
}

// Put writes filters to every tier under both the raw and normalized keys.
func (s *Service) Put(ctx context.Context, raw string, f query.Filters) {
	normalized := normalize.Normalize(raw)

	if s.shared != nil {
		s.shared.Put(ctx, normalized, f)
	}

	s.mu.Lock()
	s.mem[raw] = f
	s.mem[normalized] = f
	s.writes++
	due := s.file != nil && s.writes >= s.flushEvery
	s.mu.Unlock()

	if due {
		if err := s.Flush(); err != nil {
			s.logger.Warn("Failed to flush query cache", zap.Error(err))
		}
	}
}

// Flush snapshots the memory tier to the file tier.
func (s *Service) Flush() error {
	if s.file == nil {
		return nil
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	snapshot := maps.Clone(s.mem)
	s.writes = 0
	s.mu.Unlock()

	if err := s.file.Save(snapshot); err != nil {
		return fmt.Errorf("flush query cache: %w", err)
	}
	return nil
}

// Close flushes pending writes.
func (s *Service) Close() error {
	return s.Flush()
}

// Stats reports per-tier state. An unreachable shared tier is not an error.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	st := Stats{
		MemoryEntries: len(s.mem),
		PendingWrites: s.writes,
	}
	s.mu.RUnlock()

	if s.shared != nil {
		st.SharedEnabled = true
		n, err := s.shared.Count(ctx)
		if err != nil {
			s.logger.Warn("Failed to count shared cache entries", zap.Error(err))
		} else {
			st.SharedReachable = true
			st.SharedEntries = n
		}
	}
	if s.file != nil {
		st.FileEnabled = true
		st.FilePresent = s.file.Exists()
	}
	return st
}

// Clear empties every tier. The file tier is rewritten as an empty document.
func (s *Service) Clear(ctx context.Context) (Cleared, error) {
	var out Cleared

	if s.shared != nil {
		n, err := s.shared.Clear(ctx)
		if err != nil {
			return out, fmt.Errorf("clear shared cache: %w", err)
		}
		out.Shared = n
	}

	s.mu.Lock()
	out.Memory = len(s.mem)
	s.mem = make(map[string]query.Filters)
	s.mu.Unlock()

	if err := s.Flush(); err != nil {
		return out, err
	}

	s.logger.Info("Query cache cleared", zap.Int("shared", out.Shared), zap.Int("memory", out.Memory))
	return out, nil
}

func (s *Service) storeMemory(raw, normalized string, f query.Filters) {
	s.mu.Lock()
	s.mem[raw] = f
	s.mem[normalized] = f
	s.mu.Unlock()
}

func (s *Service) inc(tier, result string) {
	if s.lookups != nil {
		s.lookups.WithLabelValues(tier, result).Inc()
	}
}
