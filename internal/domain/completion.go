package domain

import "context"

// Role is the author of a chat message.
type Role string

// Chat roles understood by every completion provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one {role, content} entry of a completion request.
type Message struct {
	Role    Role
	Content string
}

// Completer is the shared text completion contract between layers.
// Implementations use deterministic generation settings (temperature 0).
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}

// HealthChecker verifies completion provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Completion carries the model text and token usage through the decorator chain.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
