package search

import (
	"context"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
	"github.com/kailas-cloud/usersearch/internal/domain/user"
	"github.com/kailas-cloud/usersearch/internal/usecase/parser"
)

// Parser resolves query text into filters. It never fails.
type Parser interface {
	Parse(ctx context.Context, raw string) parser.Outcome
}

// Executor runs filters against the user store.
type Executor interface {
	Apply(ctx context.Context, f query.Filters, skip, limit int) ([]user.Record, int64, error)
}

// Ranker reorders a page by relevance. It returns a permutation of the ids.
type Ranker interface {
	Rank(ctx context.Context, q string, users []user.Record) ([]int64, error)
}
