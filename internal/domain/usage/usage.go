// Package usage describes embedding token consumption against the configured budget.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: period must be day or month, got %q", domain.ErrInvalidInput, s)
	}
}

// Periods lists every budget period, shortest first.
var Periods = []Period{PeriodDay, PeriodMonth}

// Bounds returns the UTC window [start, end) of the period containing t.
// Any period other than PeriodMonth is treated as PeriodDay.
func (p Period) Bounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	if p == PeriodMonth {
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Report is the embedding token usage for one budget period.
// A zero limit means the budget is unlimited.
type Report struct {
	period      Period
	provider    string
	periodStart int64
	periodEnd   int64
	used        int64
	limit       int64
	remaining   int64
}

// NewReport creates a usage report. Timestamps are unix millis.
func NewReport(period Period, provider string, start, end, used, limit, remaining int64) Report {
	return Report{
		period:      period,
		provider:    provider,
		periodStart: start,
		periodEnd:   end,
		used:        used,
		limit:       limit,
		remaining:   remaining,
	}
}

func (r *Report) Period() Period     { return r.period }
func (r *Report) Provider() string   { return r.provider }
func (r *Report) PeriodStart() int64 { return r.periodStart }
func (r *Report) PeriodEnd() int64   { return r.periodEnd }
func (r *Report) TokensUsed() int64  { return r.used }
func (r *Report) TokensLimit() int64 { return r.limit }

// TokensRemaining returns -1 for an unlimited budget.
func (r *Report) TokensRemaining() int64 {
	if r.limit <= 0 {
		return -1
	}
	return r.remaining
}

// IsExhausted reports whether further embedding calls will be rejected this period.
func (r *Report) IsExhausted() bool { return r.limit > 0 && r.remaining <= 0 }

// ResetsAt is the unix millis timestamp at which the budget refills.
func (r *Report) ResetsAt() int64 { return r.periodEnd }
