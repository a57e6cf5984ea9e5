package warmup

import (
	"context"

	"github.com/kailas-cloud/usersearch/internal/usecase/parser"
)

// Model loads the language model on its server ahead of the first request.
type Model interface {
	Warmup(ctx context.Context) error
}

// Parser runs a query through the interpretation pipeline.
type Parser interface {
	Parse(ctx context.Context, raw string) parser.Outcome
}
