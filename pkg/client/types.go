package client

import "time"

// SearchOptions controls paging and ranking. Zero Limit uses the server
// default.
type SearchOptions struct {
	Skip  int
	Limit int
	Rank  bool
}

// User is one search hit.
type User struct {
	ID         int64   `json:"id"`
	FullName   string  `json:"full_name"`
	Username   string  `json:"username"`
	Gender     string  `json:"gender"`
	ProfilePic *string `json:"profile_pic"`
}

// SearchResult is one page of users plus interpretation details.
type SearchResult struct {
	Query           string            `json:"query"`
	Users           []User            `json:"results"`
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

	// Filled from response headers.
	ModelTokens int `json:"-"`
	ModelCalls  int `json:"-"`
}

// UsagePeriod is the aggregation window for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains model token usage for one window.
type UsageReport struct {
	Period      UsagePeriod `json:"period"`
	Provider    string      `json:"provider"`
	PeriodStart time.Time   `json:"period_start_at"`
	PeriodEnd   time.Time   `json:"period_end_at"`
	Tokens      int64       `json:"tokens"`
	Budget      Budget      `json:"budget"`
}

// Budget is the token cap state. Limit and Remaining are nil when unlimited.
type Budget struct {
	TokensLimit     *int64    `json:"tokens_limit"`
	TokensRemaining *int64    `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// CacheTier describes one query cache tier.
type CacheTier struct {
	Enabled       bool `json:"enabled"`
	Available     bool `json:"available"`
	Entries       *int `json:"entries"`
	PendingWrites *int `json:"pending_writes"`
}

// CacheStats reports every cache tier.
type CacheStats struct {
	Memory CacheTier `json:"memory"`
	Redis  CacheTier `json:"redis"`
	File   CacheTier `json:"file"`
}

// CacheCleared reports how many entries were removed.
type CacheCleared struct {
	Status        string `json:"status"`
	RedisCleared  int    `json:"redis_cleared"`
	MemoryCleared int    `json:"memory_cleared"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Status string `json:"status"`
}
