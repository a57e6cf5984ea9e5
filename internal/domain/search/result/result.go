package result

import (
	"fmt"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
	"github.com/kailas-cloud/usersearch/internal/domain/user"
)

// Result is one page of a natural-language search. Built fresh per request, never cached.
type Result struct {
	records    []user.Record
	totalCount int64
	filters    query.Filters
	applied    map[string]string
	ranked     bool
}

// New creates a search result page.
func New(records []user.Record, totalCount int64, filters query.Filters, ranked bool) Result {
	return Result{
		records:    records,
		totalCount: totalCount,
		filters:    filters,
		applied:    Applied(filters),
		ranked:     ranked,
	}
}

// Records returns the page rows in final order.
func (r *Result) Records() []user.Record { return r.records }

// TotalCount returns the number of matches ignoring pagination.
func (r *Result) TotalCount() int64 { return r.totalCount }

// Filters returns the filters the page was produced with.
func (r *Result) Filters() query.Filters { return r.filters }

// QueryUnderstood propagates the parse confidence flag.
func (r *Result) QueryUnderstood() bool { return r.filters.Understood() }

// ParseWarnings propagates the parse warnings.
func (r *Result) ParseWarnings() []string { return r.filters.Warnings() }

// FiltersApplied describes the non-null filters for display. Nil when nothing applies.
func (r *Result) FiltersApplied() map[string]string { return r.applied }

// Ranked reports whether the ranking step reordered the page.
func (r *Result) Ranked() bool { return r.ranked }

// Applied builds the user-facing description of the active filters.
func Applied(f query.Filters) map[string]string {
	out := make(map[string]string)

	if g, ok := f.Gender(); ok {
		out["gender"] = string(g)
	}
	if name, ok := f.NameSubstr(); ok {
		if f.StartsWith() {
			out["name_starts_with"] = name
		} else {
			out["name_contains"] = name
		}
	}
	if p, ok := f.Parity(); ok {
		out["name_length"] = fmt.Sprintf("%s number of letters", p)
	}
	if has, ok := f.HasProfilePic(); ok {
		if has {
			out["profile_picture"] = "has profile picture"
		} else {
			out["profile_picture"] = "no profile picture"
		}
	}
	if by, ok := f.SortBy(); ok {
		out["sorted_by"] = sortLabel(by, f.SortOrder())
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func sortLabel(by query.SortField, order query.SortOrder) string {
	desc := order == query.Desc
	switch by {
	case query.SortNameLength, query.SortUsernameLength:
		subject := "name length"
		if by == query.SortUsernameLength {
			subject = "username length"
		}
		if desc {
			return subject + " (longest first)"
		}
		return subject + " (shortest first)"
	case query.SortName, query.SortUsername:
		if desc {
			return string(by) + " (Z-A)"
		}
		return string(by) + " (A-Z)"
	case query.SortCreatedAt:
		if desc {
			return "creation date (newest first)"
		}
		return "creation date (oldest first)"
	default:
		return string(by)
	}
}
