// Package warmup primes the model and the query cache at startup.
package warmup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/usecase/parser"
)

// DefaultPoolSize bounds concurrent warmup parses.
const DefaultPoolSize = 2

// Summary reports what a warmup run did.
type Summary struct {
	ModelReady bool
	Queries    int
	BySource   map[parser.Source]int
}

// Service runs warmup work on a bounded worker pool.
type Service struct {
	model   Model
	parser  Parser
	queries []string
	pool    *ants.Pool
	logger  *zap.Logger
}

// New creates a warmup service. model can be nil (no model configured).
// poolSize < 1 falls back to DefaultPoolSize.
func New(model Model, p Parser, queries []string, poolSize int, logger *zap.Logger) (*Service, error) {
	if poolSize < 1 {
		poolSize = DefaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create warmup pool: %w", err)
	}
	return &Service{model: model, parser: p, queries: queries, pool: pool, logger: logger}, nil
}

// Run pings the model, then parses every configured query so its filters
// land in the cache. Failures are logged, never returned.
func (s *Service) Run(ctx context.Context) Summary {
	sum := Summary{BySource: make(map[parser.Source]int)}
	if s.model != nil {
		s.logger.Info("Warming up model")
		if err := s.model.Warmup(ctx); err != nil {
			s.logger.Warn("Model warmup failed", zap.Error(err))
		} else {
			sum.ModelReady = true
			s.logger.Info("Model warmup complete")
		}
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done atomic.Int64
	)
	for _, q := range s.queries {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			out := s.parser.Parse(ctx, q)
			done.Add(1)
			mu.Lock()
			sum.BySource[out.Source]++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			s.logger.Warn("Failed to submit warmup query", zap.String("query", q), zap.Error(err))
		}
	}
	wg.Wait()
	sum.Queries = int(done.Load())

	if len(s.queries) > 0 {
		s.logger.Info("Query warmup complete",
			zap.Int("queries", sum.Queries),
			zap.Any("by_source", sum.BySource),
		)
	}
	return sum
}

// Release frees the worker pool. The service must not be used afterwards.
func (s *Service) Release() {
	s.pool.Release()
}
