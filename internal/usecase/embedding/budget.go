package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// persistTimeout bounds the write-behind of one Record call.
const persistTimeout = 2 * time.Second

// BudgetStore persists per-period token counters.
// Add must set ttl only when it creates the key.
type BudgetStore interface {
	Add(ctx context.Context, key string, tokens int64, ttl time.Duration) error
	Load(ctx context.Context, key string) (int64, error)
}

// window counts tokens for one budget period. A zero limit means unlimited.
type window struct {
	period domusage.Period
	limit  int64
	used   int64
	start  time.Time
}

// roll zeroes the counter once now leaves the current period.
func (w *window) roll(now time.Time) {
	start, _ := w.period.Bounds(now)
	if start.After(w.start) {
		w.used = 0
		w.start = start
	}
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

func (w *window) remaining() int64 {
	if w.limit <= 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

// keyLayout formats the period start inside the counter key.
func (w *window) keyLayout() string {
	if w.period == domusage.PeriodMonth {
		return "2006-01"
	}
	return "2006-01-02"
}

// ttl keeps a counter around for one extra period after it closes.
func (w *window) ttl() time.Duration {
	if w.period == domusage.PeriodMonth {
		return 62 * 24 * time.Hour
	}
	return 48 * time.Hour
}

// BudgetTracker enforces daily and monthly embedding token budgets shared by
// every embedder of the process. Check is answered from memory; Record writes
// behind to the store so counters survive restarts and are shared across replicas
// on the next load.
type BudgetTracker struct {
	mu       sync.Mutex
	windows  []*window
	action   BudgetAction
	provider string
	store    BudgetStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudgetTracker creates a budget tracker with the given limits.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		action:   action,
		provider: provider,
		now:      time.Now,
		logger:   logger,
	}
	limits := map[domusage.Period]int64{domusage.PeriodDay: dailyLimit, domusage.PeriodMonth: monthlyLimit}
	for _, p := range domusage.Periods {
		w := &window{period: p, limit: limits[p]}
		w.start, _ = p.Bounds(b.now())
		b.windows = append(b.windows, w)
	}
	return b
}

// WithClock overrides the time source and realigns the windows to it.
func (b *BudgetTracker) WithClock(now func() time.Time) *BudgetTracker {
	if now == nil {
		return b
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	for _, w := range b.windows {
		w.start, _ = w.period.Bounds(now())
		w.used = 0
	}
	return b
}

// WithStore attaches a persistence store and loads the current counters from it.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	fields := []zap.Field{zap.String("provider", b.provider)}
	for _, w := range b.windows {
		w.roll(now)
		key := b.key(w, now)
		used, err := store.Load(ctx, key)
		if err != nil {
			b.logger.Warn("Failed to load token budget", zap.String("key", key), zap.Error(err))
			continue
		}
		w.used = used
		fields = append(fields, zap.Int64(string(w.period)+"_used", used))
	}
	b.logger.Info("Budget loaded from store", fields...)
	return b
}

func (b *BudgetTracker) key(w *window, now time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s",
		domain.KeyPrefix, b.provider, w.period, now.UTC().Format(w.keyLayout()))
}

// Check reports whether another embedding request fits the budget.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var over *window
	for _, w := range b.windows {
		w.roll(now)
		if over == nil && w.exceeded() {
			over = w
		}
	}
	if over == nil {
		return nil
	}

	if b.action == BudgetActionReject {
		return fmt.Errorf("%s budget of %d tokens used up: %w",
			over.period, over.limit, domain.ErrEmbeddingQuotaExceeded)
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.String("period", string(over.period)),
		zap.Int64("used", over.used),
		zap.Int64("limit", over.limit),
	)
	return nil
}

// Record adds consumed tokens to every window, then persists them.
func (b *BudgetTracker) Record(tokens int64) {
	type pending struct {
		key string
		ttl time.Duration
	}

	b.mu.Lock()
	now := b.now()
	writes := make([]pending, 0, len(b.windows))
	for _, w := range b.windows {
		w.roll(now)
		w.used += tokens
		writes = append(writes, pending{key: b.key(w, now), ttl: w.ttl()})
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request: a cancelled caller still consumed the tokens.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	for _, p := range writes {
		if err := store.Add(ctx, p.key, tokens, p.ttl); err != nil {
			b.logger.Warn("Failed to persist token budget", zap.String("key", p.key), zap.Error(err))
		}
	}
}

// Remaining returns the tokens left in period, or -1 when it is unlimited.
func (b *BudgetTracker) Remaining(period domusage.Period) int64 {
	_, _, remaining := b.Snapshot(period)
	return remaining
}

// Snapshot returns used, limit and remaining tokens for period.
// Unknown periods report as unlimited and unused.
func (b *BudgetTracker) Snapshot(period domusage.Period) (used, limit, remaining int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range b.windows {
		if w.period != period {
			continue
		}
		w.roll(b.now())
		return w.used, w.limit, w.remaining()
	}
	return 0, 0, -1
}
