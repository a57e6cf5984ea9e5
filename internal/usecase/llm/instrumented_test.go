package llm

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterModelMetrics()
	os.Exit(m.Run())
}

func TestInstrumentedCompleter_Success(t *testing.T) {
	inner := &fakeCompleter{replies: []string{"ok"}, tokens: 12}
	p := NewInstrumentedCompleter(inner, "test", "test-model", nil, zap.NewNop())

	res, err := p.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "ok" || res.TotalTokens != 12 {
		t.Errorf("unexpected completion %+v", res)
	}
}

func TestInstrumentedCompleter_RecordsBudget(t *testing.T) {
	inner := &fakeCompleter{replies: []string{"ok"}, tokens: 100}
	bt := NewBudgetTracker("budget-test", 1000, 0, BudgetActionReject, zap.NewNop())
	p := NewInstrumentedCompleter(inner, "budget-test", "m", bt, zap.NewNop())

	if _, err := p.Complete(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bt.DailyUsed() != 100 {
		t.Errorf("expected 100 recorded tokens, got %d", bt.DailyUsed())
	}
	gauge := metrics.ModelBudgetTokensRemaining.WithLabelValues("budget-test", "daily")
	if got := testutil.ToFloat64(gauge); got != 900 {
		t.Errorf("expected remaining gauge 900, got %v", got)
	}
}

func TestInstrumentedCompleter_BudgetRejectSkipsProvider(t *testing.T) {
	inner := &fakeCompleter{replies: []string{"ok"}, tokens: 10}
	bt := NewBudgetTracker("test", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)
	p := NewInstrumentedCompleter(inner, "test", "m", bt, zap.NewNop())

	_, err := p.Complete(context.Background(), nil)
	if !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if inner.callCount() != 0 {
		t.Errorf("provider must not be called, got %d calls", inner.callCount())
	}
}

func TestInstrumentedCompleter_InnerError(t *testing.T) {
	inner := &fakeCompleter{err: domain.ErrModelUnavailable}
	p := NewInstrumentedCompleter(inner, "test", "m", nil, zap.NewNop())

	_, err := p.Complete(context.Background(), nil)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}
