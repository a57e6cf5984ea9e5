package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterModelMetrics()
	os.Exit(m.Run())
}

func newTestCompleter(t *testing.T, url, apiKey string) *Completer {
	t.Helper()
	c, err := NewCompleter(&Config{
		ServerURL: url,
		APIKey:    apiKey,
		Model:     "qwen3:8b",
		JSONMode:  true,
		Provider:  "ollama",
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}
	return c
}

func TestCompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if body["format"] != "json" {
			t.Errorf("expected json format, got %v", body["format"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "qwen3:8b",
			"created_at":        "2024-01-01T00:00:00Z",
			"message":           map[string]any{"role": "assistant", "content": `{"gender":"Male"}`},
			"done":              true,
			"prompt_eval_count": 20,
			"eval_count":        7,
		})
	}))
	defer server.Close()

	c := newTestCompleter(t, server.URL, "secret")
	res, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "parse"},
		{Role: domain.RoleUser, Content: "men"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Content != `{"gender":"Male"}` {
		t.Errorf("unexpected content %q", res.Content)
	}
	if res.TotalTokens != 27 {
		t.Errorf("expected 27 total tokens, got %d", res.TotalTokens)
	}
}

func TestCompleter_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(t, server.URL, "").Complete(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "men"},
	})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestCompleter_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	if err := newTestCompleter(t, server.URL, "").HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestIntInfo(t *testing.T) {
	info := map[string]any{"a": 3, "b": float64(4), "c": "x"}
	if intInfo(info, "a") != 3 || intInfo(info, "b") != 4 || intInfo(info, "c") != 0 || intInfo(info, "d") != 0 {
		t.Error("unexpected conversions")
	}
}
