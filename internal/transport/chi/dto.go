package chi

import (
	"time"

	"github.com/kailas-cloud/usersearch/internal/domain/search/result"
	"github.com/kailas-cloud/usersearch/internal/domain/user"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeModelUnavailable = "model_unavailable"
	CodeNotConfigured    = "not_configured"
	CodeInternalError    = "internal_error"
)

// Search response messages.
const (
	MsgNotUnderstood = "Query could not be fully understood - showing all users"
	MsgSuccess       = "Search completed successfully"
	MsgNoResults     = "No users found matching your search criteria"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserResponse is one user in a search page.
type UserResponse struct {
	ID         int64   `json:"id"`
	FullName   string  `json:"full_name"`
	Username   string  `json:"username"`
	Gender     string  `json:"gender"`
	ProfilePic *string `json:"profile_pic"`
}

// SearchResponse is the GET /ai/search body.
type SearchResponse struct {
	Query           string            `json:"query"`
	Results         []UserResponse    `json:"results"`
	Count           int               `json:"count"`
	Total           int64             `json:"total"`
	Skip            int               `json:"skip"`
	Limit           int               `json:"limit"`
	HasMore         bool              `json:"has_more"`
	Message         string            `json:"message"`
	QueryUnderstood bool              `json:"query_understood"`
	ParseWarnings   []string          `json:"parse_warnings"`
	FiltersApplied  map[string]string `json:"filters_applied"`
	Ranked          bool              `json:"ranked"`
}

// ChatRequest is the POST /ai/test body.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse is the POST /ai/test reply.
type ChatResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Status string `json:"status"`
}

// CacheStatsResponse is the GET /ai/cache/stats body.
type CacheStatsResponse struct {
	Memory CacheTierStats `json:"memory"`
	Redis  CacheTierStats `json:"redis"`
	File   CacheTierStats `json:"file"`
}

// CacheTierStats describes one cache tier.
type CacheTierStats struct {
	Enabled       bool `json:"enabled"`
	Available     bool `json:"available"`
	Entries       *int `json:"entries,omitempty"`
	PendingWrites *int `json:"pending_writes,omitempty"`
}

// CacheClearResponse is the DELETE /ai/cache body.
type CacheClearResponse struct {
	Status        string `json:"status"`
	RedisCleared  int    `json:"redis_cleared"`
	MemoryCleared int    `json:"memory_cleared"`
}

// UsageResponse is the GET /ai/usage body.
type UsageResponse struct {
	Period        string    `json:"period"`
	Provider      string    `json:"provider,omitempty"`
	PeriodStartAt time.Time `json:"period_start_at"`
	PeriodEndAt   time.Time `json:"period_end_at"`
	Tokens        int64     `json:"tokens"`
	Budget        Budget    `json:"budget"`
}

// Budget is the token cap state; limit and remaining are omitted when unlimited.
type Budget struct {
	TokensLimit     *int64    `json:"tokens_limit,omitempty"`
	TokensRemaining *int64    `json:"tokens_remaining,omitempty"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchToResponse(q string, skip, limit int, res result.Result) SearchResponse {
	records := res.Records()
	items := make([]UserResponse, len(records))
	for i, r := range records {
		items[i] = userToResponse(r)
	}

	warnings := res.ParseWarnings()
	if warnings == nil {
		warnings = []string{}
	}

	return SearchResponse{
		Query:           q,
		Results:         items,
		Count:           len(items),
		Total:           res.TotalCount(),
		Skip:            skip,
		Limit:           limit,
		HasMore:         int64(skip+len(items)) < res.TotalCount(),
		Message:         searchMessage(res),
		QueryUnderstood: res.QueryUnderstood(),
		ParseWarnings:   warnings,
		FiltersApplied:  res.FiltersApplied(),
		Ranked:          res.Ranked(),
	}
}

func searchMessage(res result.Result) string {
	switch {
	case !res.QueryUnderstood():
		return MsgNotUnderstood
	case len(res.Records()) > 0:
		return MsgSuccess
	default:
		return MsgNoResults
	}
}

func userToResponse(r user.Record) UserResponse {
	return UserResponse{
		ID:         r.ID,
		FullName:   r.FullName,
		Username:   r.Username,
		Gender:     r.Gender,
		ProfilePic: r.ProfilePic,
	}
}
