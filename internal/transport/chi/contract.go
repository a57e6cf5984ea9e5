package chi

import (
	"context"

	"github.com/kailas-cloud/usersearch/internal/domain/search/request"
	"github.com/kailas-cloud/usersearch/internal/domain/search/result"
	domusage "github.com/kailas-cloud/usersearch/internal/domain/usage"
	healthuc "github.com/kailas-cloud/usersearch/internal/usecase/health"
	"github.com/kailas-cloud/usersearch/internal/usecase/querycache"
)

// Searcher runs a natural-language search.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Result, error)
}

// Chatter sends a raw prompt to the language model.
type Chatter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// CacheAdmin inspects and empties the query cache.
type CacheAdmin interface {
	Stats(ctx context.Context) querycache.Stats
	Clear(ctx context.Context) (querycache.Cleared, error)
}

// UsageReporter builds model token usage reports.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker runs component health checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
