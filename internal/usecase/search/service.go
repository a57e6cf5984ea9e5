// Package search runs a natural-language user search: parse, execute, and
// optionally re-rank the page.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain/search/request"
	"github.com/kailas-cloud/usersearch/internal/domain/search/result"
	"github.com/kailas-cloud/usersearch/internal/domain/user"
	"github.com/kailas-cloud/usersearch/internal/metrics"
)

// Service handles natural-language search.
type Service struct {
	parser Parser
	exec   Executor
	ranker Ranker
	logger *zap.Logger
}

// New creates a search service. ranker can be nil (ranking disabled).
func New(p Parser, exec Executor, ranker Ranker, logger *zap.Logger) *Service {
	return &Service{parser: p, exec: exec, ranker: ranker, logger: logger}
}

// Search parses the query and returns one page of matching users.
// Parsing never fails; only store errors are returned.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Result, error) {
	out := s.parser.Parse(ctx, req.Query())

	records, total, err := s.exec.Apply(ctx, out.Filters, req.Skip(), req.Limit())
	if err != nil {
		return result.Result{}, fmt.Errorf("apply filters: %w", err)
	}
	metrics.SearchResultsTotal.Observe(float64(total))

	ranked := false
	if req.EnableRanking() && s.ranker != nil && len(records) > 1 {
		records, ranked = s.rank(ctx, req.Query(), records)
	}

	s.logger.Info("Search completed",
		zap.String("query", req.Query()),
		zap.String("source", string(out.Source)),
		zap.Int64("total", total),
		zap.Int("returned", len(records)),
		zap.Bool("ranked", ranked),
	)

	return result.New(records, total, out.Filters, ranked), nil
}

// rank reorders records by the ranker's permutation. A ranking failure keeps
// the store order.
func (s *Service) rank(ctx context.Context, q string, records []user.Record) ([]user.Record, bool) {
	ids, err := s.ranker.Rank(ctx, q, records)
	if err != nil {
		s.logger.Warn("Ranking failed, keeping store order", zap.Error(err))
		return records, false
	}

	byID := make(map[int64]user.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	out := make([]user.Record, 0, len(records))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
			delete(byID, id)
		}
	}
	if len(out) != len(records) {
		s.logger.Warn("Ranking was not a permutation, keeping store order",
			zap.Int("ranked", len(out)), zap.Int("records", len(records)))
		return records, false
	}
	return out, true
}
