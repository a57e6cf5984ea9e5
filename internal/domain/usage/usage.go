// Package usage describes model token consumption for a budget period.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/usersearch/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: period must be day or month, got %q", domain.ErrInvalidRequest, s)
	}
}

// Report is a model token usage report for one budget window.
type Report struct {
	period      Period
	provider    string
	periodStart time.Time
	periodEnd   time.Time
	tokensUsed  int64
	tokensLimit int64 // 0 = unlimited
}

// NewReport creates a usage report.
func NewReport(period Period, provider string, start, end time.Time, used, limit int64) Report {
	return Report{
		period:      period,
		provider:    provider,
		periodStart: start,
		periodEnd:   end,
		tokensUsed:  used,
		tokensLimit: limit,
	}
}

// Period returns the aggregation granularity.
func (r Report) Period() Period { return r.period }

// Provider returns the model provider name.
func (r Report) Provider() string { return r.provider }

// PeriodStart returns the window start (UTC).
func (r Report) PeriodStart() time.Time { return r.periodStart }

// PeriodEnd returns the window end, which is also when the budget resets.
func (r Report) PeriodEnd() time.Time { return r.periodEnd }

// TokensUsed returns tokens consumed in the window.
func (r Report) TokensUsed() int64 { return r.tokensUsed }

// TokensLimit returns the cap, 0 when unlimited.
func (r Report) TokensLimit() int64 { return r.tokensLimit }

// Unlimited reports whether no cap is configured.
func (r Report) Unlimited() bool { return r.tokensLimit <= 0 }

// TokensRemaining returns tokens left, -1 when unlimited.
func (r Report) TokensRemaining() int64 {
	if r.Unlimited() {
		return -1
	}
	return max(r.tokensLimit-r.tokensUsed, 0)
}

// Exhausted reports whether the cap is reached.
func (r Report) Exhausted() bool {
	return !r.Unlimited() && r.tokensUsed >= r.tokensLimit
}
