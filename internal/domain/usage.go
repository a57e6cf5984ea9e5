package domain

import "context"

type modelUsageKey struct{}

// ModelUsage collects model token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the model client writes after each completion; the handler reads it for response headers.
type ModelUsage struct {
	TotalTokens int
	Calls       int
}

// NewContextWithUsage returns a context with a usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *ModelUsage) {
	u := &ModelUsage{}
	return context.WithValue(ctx, modelUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *ModelUsage {
	u, _ := ctx.Value(modelUsageKey{}).(*ModelUsage)
	return u
}

// AddTokens records one model call and its consumed tokens.
func (u *ModelUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Calls++
	}
}
