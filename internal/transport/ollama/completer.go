// Package ollama adapts a local or hosted Ollama server to domain.Completer.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/metrics"
)

const (
	defaultServerURL = "http://localhost:11434"
	defaultTimeout   = 60 * time.Second
	seed             = 42
)

// Config holds the Ollama connection settings.
type Config struct {
	ServerURL string
	APIKey    string
	Model     string
	JSONMode  bool
	Timeout   time.Duration
	Provider  string
	Logger    *zap.Logger
}

// Completer generates chat completions through langchaingo's Ollama client.
type Completer struct {
	llm        llms.Model
	httpClient *http.Client
	serverURL  string
	model      string
	provider   string
	logger     *zap.Logger
}

// NewCompleter creates an Ollama completer. APIKey is sent as a bearer token
// for hosted endpoints and may be empty for a local server.
func NewCompleter(cfg *Config) (*Completer, error) {
	serverURL := strings.TrimRight(cfg.ServerURL, "/")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.APIKey != "" {
		httpClient.Transport = &bearerTransport{token: cfg.APIKey, base: http.DefaultTransport}
	}

	opts := []ollama.Option{
		ollama.WithServerURL(serverURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	}
	if cfg.JSONMode {
		opts = append(opts, ollama.WithFormat("json"))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &Completer{
		llm:        llm,
		httpClient: httpClient,
		serverURL:  serverURL,
		model:      cfg.Model,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}, nil
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	start := time.Now()

	resp, err := c.llm.GenerateContent(ctx, toMessageContent(messages),
		llms.WithTemperature(0),
		llms.WithSeed(seed),
	)

	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(c.provider, c.model, "api_error").Inc()
		return domain.Completion{}, fmt.Errorf("ollama generate: %v: %w", err, domain.ErrModelUnavailable) //nolint:errorlint // provider error is context only
	}
	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(c.provider, c.model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("empty ollama response: %w", domain.ErrModelResponseInvalid)
	}

	metrics.ModelRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	choice := resp.Choices[0]
	out := domain.Completion{
		Content:          choice.Content,
		PromptTokens:     intInfo(choice.GenerationInfo, "PromptTokens"),
		CompletionTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
		TotalTokens:      intInfo(choice.GenerationInfo, "TotalTokens"),
	}
	if out.TotalTokens == 0 {
		out.TotalTokens = out.PromptTokens + out.CompletionTokens
	}
	if out.TotalTokens > 0 {
		metrics.ModelTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(out.PromptTokens))
		metrics.ModelTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(out.CompletionTokens))
		metrics.ModelTokensTotal.WithLabelValues(c.provider, c.model, "total").Add(float64(out.TotalTokens))
	}
	return out, nil
}

// HealthCheck lists local models (GET /api/tags).
func (c *Completer) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only probe
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list models: status %d", resp.StatusCode)
	}
	return nil
}

func toMessageContent(messages []domain.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, len(messages))
	for i, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case domain.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case domain.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		out[i] = llms.TextParts(role, m.Content)
	}
	return out
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r) //nolint:wrapcheck // transparent transport
}
