package parser

import (
	"context"

	"github.com/kailas-cloud/usersearch/internal/detect"
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Cache resolves previously parsed queries by raw text.
type Cache interface {
	Get(ctx context.Context, raw string) (query.Filters, bool)
	Put(ctx context.Context, raw string, f query.Filters)
}

// Detector runs rule-based detection over normalized text.
type Detector interface {
	Detect(normalized string) detect.Detection
}

// Model parses a query with a language model.
type Model interface {
	ParseFilters(ctx context.Context, text string) (query.Filters, error)
}
