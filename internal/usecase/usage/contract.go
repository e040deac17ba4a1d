package usage

import domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"

// BudgetReader exposes the token counters of one budget period.
// remaining is -1 when the period has no limit.
type BudgetReader interface {
	Snapshot(period domusage.Period) (used, limit, remaining int64)
}
