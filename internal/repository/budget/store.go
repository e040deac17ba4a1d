// Package budget keeps embedding token counters in the key-value store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/lifeos/internal/db"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Incr(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}

// Store implements usecase/embedding.BudgetStore.
type Store struct {
	store store
}

// New creates a budget store.
func New(s store) *Store {
	return &Store{store: s}
}

// Add increments the counter at key. ttl applies only when the key has none yet,
// so a period's counter expires relative to its first write.
func (s *Store) Add(ctx context.Context, key string, tokens int64, ttl time.Duration) error {
	if _, err := s.store.Incr(ctx, key, tokens, ttl); err != nil {
		return fmt.Errorf("incr %s: %w", key, err)
	}
	return nil
}

// Load returns the counter at key, zero when it does not exist.
func (s *Store) Load(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("get %s: %w", key, err)
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s is not an integer: %w", key, err)
	}
	return n, nil
}
