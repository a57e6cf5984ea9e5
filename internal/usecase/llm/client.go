// Package llm turns free-text queries into filters with a language model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/domain/query"
	"github.com/kailas-cloud/usersearch/internal/domain/user"
	"github.com/kailas-cloud/usersearch/internal/metrics"
	"github.com/kailas-cloud/usersearch/internal/normalize"
)

// Defaults for Config zero values.
const (
	DefaultMaxConcurrent  = 4
	DefaultQueueTimeout   = 5 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Config bounds model usage.
type Config struct {
	MaxConcurrent  int64
	QueueTimeout   time.Duration
	RequestTimeout time.Duration
}

// Client issues prompts through a Completer with bounded concurrency.
// Callers beyond MaxConcurrent wait up to QueueTimeout for a slot.
type Client struct {
	completer      domain.Completer
	sem            *semaphore.Weighted
	queueTimeout   time.Duration
	requestTimeout time.Duration
	logger         *zap.Logger
}

// New creates a model client.
func New(completer domain.Completer, cfg Config, logger *zap.Logger) *Client {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = DefaultQueueTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Client{
		completer:      completer,
		sem:            semaphore.NewWeighted(cfg.MaxConcurrent),
		queueTimeout:   cfg.QueueTimeout,
		requestTimeout: cfg.RequestTimeout,
		logger:         logger,
	}
}

// ParseFilters asks the model for the filters of one query. The reply is
// sanitized field by field; a result with no field set is not understood.
func (c *Client) ParseFilters(ctx context.Context, text string) (query.Filters, error) {
	fixed, changed := normalize.FixTypos(text)
	if changed {
		c.logger.Debug("Corrected typos before model parse", zap.String("query", text), zap.String("fixed", fixed))
	}

	reply, err := c.complete(ctx, parseSystemPrompt, parsePrompt(fixed))
	if err != nil {
		return query.Filters{}, err
	}

	fields, rejected, err := sanitize(extractObject(reply))
	if err != nil {
		c.logger.Warn("Unusable model reply", zap.String("reply", reply), zap.Error(err))
		return query.Filters{}, err
	}
	for _, r := range rejected {
		c.logger.Warn("Dropped model field", zap.String("query", text), zap.Error(r))
	}

	return query.New(fields, fields.HasFilter(), nil), nil
}

// Rank asks the model to order users by relevance to q. The result is always
// a permutation of the input ids: unknown ids are ignored and ids the model
// left out keep their relative order at the end. On error the input order is
// returned together with the error.
func (c *Client) Rank(ctx context.Context, q string, users []user.Record) ([]int64, error) {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	if len(users) <= 1 {
		return ids, nil
	}

	prompt, err := rankPrompt(q, users)
	if err != nil {
		return ids, err
	}
	reply, err := c.complete(ctx, rankSystemPrompt, prompt)
	if err != nil {
		return ids, err
	}

	var ranked []int64
	if err := json.Unmarshal([]byte(extractArray(reply)), &ranked); err != nil {
		return ids, fmt.Errorf("%w: rank reply: %v", domain.ErrModelResponseInvalid, err) //nolint:errorlint // decode error is context only
	}
	return permutation(ids, ranked), nil
}

func permutation(ids, ranked []int64) []int64 {
	out := make([]int64, 0, len(ids))
	used := make(map[int64]bool, len(ids))
	for _, id := range ranked {
		if !used[id] && slices.Contains(ids, id) {
			out = append(out, id)
			used[id] = true
		}
	}
	for _, id := range ids {
		if !used[id] {
			out = append(out, id)
		}
	}
	return out
}

// Chat sends a raw prompt and returns the reply with reasoning blocks removed.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	reply, err := c.complete(ctx, "", prompt)
	if err != nil {
		return "", err
	}
	return stripReasoning(reply), nil
}

// Warmup sends a trivial prompt so the provider loads the model.
func (c *Client) Warmup(ctx context.Context) error {
	if _, err := c.complete(ctx, warmupSystemPrompt, warmupUserPrompt); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	return nil
}

// complete waits for a slot, then runs one completion under its own deadline.
// Budget rejections surface as ErrModelUnavailable so callers fall back.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	if err := c.acquire(ctx); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	msgs := make([]domain.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: system})
	}
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: prompt})

	res, err := c.completer.Complete(reqCtx, msgs)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetExceeded) {
			return "", fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		if !errors.Is(err, domain.ErrModelUnavailable) && !errors.Is(err, domain.ErrModelResponseInvalid) {
			return "", fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		return "", err
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Content, nil
}

func (c *Client) acquire(ctx context.Context) error {
	start := time.Now()
	qctx, cancel := context.WithTimeout(ctx, c.queueTimeout)
	defer cancel()

	err := c.sem.Acquire(qctx, 1)
	metrics.ModelQueueWaitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("Model queue full", zap.Duration("waited", time.Since(start)))
		return fmt.Errorf("%w: no free model slot: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}
