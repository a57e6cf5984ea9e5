package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/metrics"
)

// Connection pool defaults for the provider HTTP client.
const (
	DefaultTimeout             = 60 * time.Second
	DefaultDialTimeout         = 10 * time.Second
	DefaultMaxIdleConnsPerHost = 5
	DefaultMaxConnsPerHost     = 10
)

// deterministicSeed pins sampling for providers that honor it.
const deterministicSeed = 42

// Completer is a chat completion provider using the OpenAI-compatible API.
type Completer struct {
	client    *openai.Client
	model     string
	maxTokens int
	jsonMode  bool
	provider  string
	logger    *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	MaxTokens           int
	JSONMode            bool
	Provider            string
	Timeout             time.Duration
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	Logger              *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider with a
// pooled HTTP client.
func NewCompleter(cfg *Config) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = newHTTPClient(cfg)

	return &Completer{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		jsonMode:  cfg.JSONMode,
		provider:  cfg.Provider,
		logger:    cfg.Logger,
	}
}

func newHTTPClient(cfg *Config) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	idle := cfg.MaxIdleConnsPerHost
	if idle <= 0 {
		idle = DefaultMaxIdleConnsPerHost
	}
	conns := cfg.MaxConnsPerHost
	if conns <= 0 {
		conns = DefaultMaxConnsPerHost
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: DefaultDialTimeout}).DialContext
	transport.MaxIdleConnsPerHost = idle
	transport.MaxConnsPerHost = conns

	return &http.Client{Timeout: timeout, Transport: transport}
}

// Complete implements domain.Completer with transport-level metrics.
func (c *Completer) Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(messages),
		// go-openai drops a zero temperature via omitempty, which lets the
		// provider apply its own default.
		Temperature: math.SmallestNonzeroFloat32,
		Seed:        ptr(deterministicSeed),
		MaxTokens:   c.maxTokens,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(c.provider, c.model, errorType(ctx, err)).Inc()
		return domain.Completion{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(c.provider, c.model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("empty completion response: %w", domain.ErrModelResponseInvalid)
	}

	metrics.ModelRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.ModelTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.ModelTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(usage.CompletionTokens))
		metrics.ModelTokensTotal.WithLabelValues(c.provider, c.model, "total").Add(float64(usage.TotalTokens))
	}

	c.logger.Debug("Completion received",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", usage.TotalTokens),
	)

	return domain.Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func errorType(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	return "api_error"
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrModelUnavailable for correct fallback.
func parseAPIError(err error) error {
	wrap := domain.ErrModelUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, wrap) //nolint:errorlint // provider error is context only
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

func ptr[T any](v T) *T { return &v }
