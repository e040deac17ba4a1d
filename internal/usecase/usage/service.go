// Package usage reports embedding token consumption for the current budget period.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br       BudgetReader
	provider string
	now      func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// GetReport builds a usage report for the UTC day or month containing now.
// Unknown periods report the day.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	if period != domusage.PeriodMonth {
		period = domusage.PeriodDay
	}
	start, end := period.Bounds(s.now())

	used, limit, remaining := int64(0), int64(0), int64(-1)
	if s.br != nil {
		used, limit, remaining = s.br.Snapshot(period)
	}
	return domusage.NewReport(period, s.provider, start.UnixMilli(), end.UnixMilli(), used, limit, remaining)
}
