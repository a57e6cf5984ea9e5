package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout = 60 * time.Second
	defaultRetries = 2

	headerModelTokens = "X-Model-Tokens"
	headerModelCalls  = "X-Model-Calls"
)

// Client calls the usersearch HTTP API. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout, retries: defaultRetries}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("usersearch: invalid base URL %q", baseURL)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    newHTTPClient(cfg),
		obs:     obs,
	}, nil
}

func newHTTPClient(cfg *clientConfig) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	// hand the last response back so error bodies can be decoded
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if cfg.logger != nil {
		rc.Logger = cfg.logger
	}
	if cfg.httpClient != nil {
		rc.HTTPClient = cfg.httpClient
	} else {
		rc.HTTPClient.Timeout = cfg.timeout
	}
	return rc.StandardClient()
}

// Search runs a natural-language query.
func (c *Client) Search(ctx context.Context, q string, opts SearchOptions) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	params := url.Values{"query": {q}}
	if opts.Skip > 0 {
		params.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Rank {
		params.Set("enable_ranking", "true")
	}

	hdr, err := c.do(ctx, http.MethodGet, "/ai/search?"+params.Encode(), nil, &res)
	if err != nil {
		return SearchResult{}, err
	}
	res.ModelTokens, _ = strconv.Atoi(hdr.Get(headerModelTokens))
	res.ModelCalls, _ = strconv.Atoi(hdr.Get(headerModelCalls))
	return res, nil
}

// Chat sends a free-form prompt to the server's model and returns its reply.
func (c *Client) Chat(ctx context.Context, prompt string) (out string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	var resp chatResponse
	if _, err = c.do(ctx, http.MethodPost, "/ai/test", chatRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Output, nil
}

// Usage returns model token usage for the period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (rep UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	path := "/ai/usage"
	if period != "" {
		path += "?" + url.Values{"period": {string(period)}}.Encode()
	}
	if _, err = c.do(ctx, http.MethodGet, path, nil, &rep); err != nil {
		return UsageReport{}, err
	}
	return rep, nil
}

// CacheStats returns the query cache state.
func (c *Client) CacheStats(ctx context.Context) (st CacheStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cache.stats", start, err) }()

	if _, err = c.do(ctx, http.MethodGet, "/ai/cache/stats", nil, &st); err != nil {
		return CacheStats{}, err
	}
	return st, nil
}

// ClearCache empties every query cache tier.
func (c *Client) ClearCache(ctx context.Context) (cl CacheCleared, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cache.clear", start, err) }()

	if _, err = c.do(ctx, http.MethodDelete, "/ai/cache", nil, &cl); err != nil {
		return CacheCleared{}, err
	}
	return cl, nil
}

// Health returns the component report. A degraded service is not an error;
// check HealthStatus.Healthy.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	_, err = c.do(ctx, http.MethodGet, "/health", nil, &hs)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && hs.Status != "" {
		return hs, nil
	}
	if err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// do sends one request and decodes a 2xx body into out. For a non-2xx reply
// it returns *APIError and, when out is non-nil, still tries to decode the
// body into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (http.Header, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("usersearch: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("usersearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usersearch: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, fmt.Errorf("usersearch: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Code, apiErr.Message = eb.Code, eb.Message
		}
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.Header, fmt.Errorf("usersearch: decode response: %w", err)
		}
	}
	return resp.Header, nil
}
