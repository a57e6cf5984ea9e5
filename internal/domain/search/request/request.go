package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/usersearch/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1000
	DefaultLimit   = 50
	MaxLimit       = 200
)

// Request is a validated natural-language search.
type Request struct {
	query         string
	skip          int
	limit         int
	enableRanking bool
}

// New validates search parameters. limit=0 means the default.
// An empty query is allowed and lists every record.
func New(query string, skip, limit int, enableRanking bool) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if skip < 0 {
		return Request{}, fmt.Errorf("%w: skip must be >= 0, got %d", domain.ErrInvalidRequest, skip)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Request{}, fmt.Errorf("%w: limit must be between 1 and %d, got %d", domain.ErrInvalidRequest, MaxLimit, limit)
	}
	return Request{query: query, skip: skip, limit: limit, enableRanking: enableRanking}, nil
}

// Query returns the trimmed query text.
func (r Request) Query() string { return r.query }

// Skip returns the number of rows to skip.
func (r Request) Skip() int { return r.skip }

// Limit returns the page size.
func (r Request) Limit() int { return r.limit }

// EnableRanking reports whether the optional re-order step was requested.
func (r Request) EnableRanking() bool { return r.enableRanking }
