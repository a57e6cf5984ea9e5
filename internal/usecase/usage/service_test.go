package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/usersearch/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit   int64
	monthlyLimit int64
	dailyUsed    int64
	monthlyUsed  int64
}

func (m *mockBudgetReader) DailyLimit() int64   { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64 { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64    { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64  { return m.monthlyUsed }

var fixedNow = time.Date(2026, 2, 14, 15, 30, 0, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	s := New(br, "openai")
	s.now = func() time.Time { return fixedNow }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{dailyLimit: 10000, dailyUsed: 3000, monthlyLimit: 100000, monthlyUsed: 50000}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}
	wantStart := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	if !r.PeriodStart().Equal(wantStart) {
		t.Errorf("expected period start %v, got %v", wantStart, r.PeriodStart())
	}
	if !r.PeriodEnd().Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("expected period end next midnight, got %v", r.PeriodEnd())
	}
	if r.TokensLimit() != 10000 || r.TokensUsed() != 3000 || r.TokensRemaining() != 7000 {
		t.Errorf("unexpected budget: limit=%d used=%d remaining=%d", r.TokensLimit(), r.TokensUsed(), r.TokensRemaining())
	}
	if r.Exhausted() {
		t.Error("budget should not be exhausted")
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{monthlyLimit: 100000, monthlyUsed: 80000}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodMonth)

	wantStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !r.PeriodStart().Equal(wantStart) {
		t.Errorf("expected period start %v, got %v", wantStart, r.PeriodStart())
	}
	if !r.PeriodEnd().Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected period end March 1st, got %v", r.PeriodEnd())
	}
	if r.TokensRemaining() != 20000 {
		t.Errorf("expected remaining 20000, got %d", r.TokensRemaining())
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Unlimited() || r.TokensRemaining() != -1 {
		t.Errorf("nil reader must be unlimited, got limit=%d remaining=%d", r.TokensLimit(), r.TokensRemaining())
	}
	if r.Exhausted() {
		t.Error("nil budget reader should not be exhausted")
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := &mockBudgetReader{dailyLimit: 5000, dailyUsed: 5000}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Exhausted() {
		t.Error("budget should be exhausted when used reaches the limit")
	}
}
