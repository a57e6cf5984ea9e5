package health

import "context"

// Pinger checks a store connection (the user database or the shared cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks language-model provider availability.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
