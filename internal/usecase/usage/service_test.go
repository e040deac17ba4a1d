package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
)

// --- Mock ---

type counters struct{ used, limit, remaining int64 }

type mockBudgetReader map[domusage.Period]counters

func (m mockBudgetReader) Snapshot(p domusage.Period) (used, limit, remaining int64) {
	c := m[p]
	return c.used, c.limit, c.remaining
}

// --- Helpers ---

var now = time.Date(2026, time.February, 14, 15, 4, 5, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	return New(br, "openai").WithClock(func() time.Time { return now })
}

func reader() mockBudgetReader {
	return mockBudgetReader{
		domusage.PeriodDay:   {used: 3000, limit: 10000, remaining: 7000},
		domusage.PeriodMonth: {used: 50000, limit: 100000, remaining: 50000},
	}
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	r := newTestService(reader()).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay || r.Provider() != "openai" {
		t.Errorf("period=%q provider=%q", r.Period(), r.Provider())
	}
	dayStart := time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != dayStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", dayStart.UnixMilli(), r.PeriodStart())
	}
	if r.PeriodEnd() != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd())
	}
	if r.TokensLimit() != 10000 || r.TokensRemaining() != 7000 || r.TokensUsed() != 3000 {
		t.Errorf("limit=%d remaining=%d used=%d", r.TokensLimit(), r.TokensRemaining(), r.TokensUsed())
	}
	if r.IsExhausted() {
		t.Error("budget should not be exhausted")
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	r := newTestService(reader()).GetReport(context.Background(), domusage.PeriodMonth)

	monthStart := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != monthStart.UnixMilli() || r.PeriodEnd() != monthEnd.UnixMilli() {
		t.Errorf("window = [%d, %d)", r.PeriodStart(), r.PeriodEnd())
	}
	if r.TokensUsed() != 50000 || r.TokensLimit() != 100000 {
		t.Errorf("used=%d limit=%d", r.TokensUsed(), r.TokensLimit())
	}
	if r.ResetsAt() != monthEnd.UnixMilli() {
		t.Errorf("ResetsAt = %d", r.ResetsAt())
	}
}

func TestGetReport_UnknownPeriodFallsBackToDay(t *testing.T) {
	r := newTestService(reader()).GetReport(context.Background(), domusage.Period("total"))
	if r.Period() != domusage.PeriodDay {
		t.Errorf("period = %q, want day", r.Period())
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.TokensLimit() != 0 || r.TokensRemaining() != -1 {
		t.Errorf("unlimited mode: limit=%d remaining=%d", r.TokensLimit(), r.TokensRemaining())
	}
	if r.IsExhausted() {
		t.Error("unlimited budget should never be exhausted")
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := reader()
	br[domusage.PeriodDay] = counters{used: 10000, limit: 10000, remaining: 0}

	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)
	if !r.IsExhausted() {
		t.Error("budget should be exhausted")
	}
}
