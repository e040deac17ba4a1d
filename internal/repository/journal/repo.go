// Package journal persists entries, habits, reminders and tasks as Redis hashes.
//
// Every record lives under its owner's namespace:
//
//	lifeos:data:{user}:{kind}:{id}   hash with the record fields
//	lifeos:data:{user}:{index}       sorted set of ids scored by creation time
//
// A record owned by another user is therefore indistinguishable from a missing one.
package journal

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
)

// store is the consumer interface for journal records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo implements the journal usecase repositories.
type Repo struct {
	store store
}

// New creates a journal repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SaveEntry creates or replaces an entry.
func (r *Repo) SaveEntry(ctx context.Context, e *domjournal.Entry) error {
	return save(ctx, r.store, entries, e.UserID(), e.ID(), float64(e.CreatedAt()), entryToHash(e))
}

// GetEntry returns one of the user's entries.
func (r *Repo) GetEntry(ctx context.Context, userID, id string) (domjournal.Entry, error) {
	return get(ctx, r.store, entries, userID, id)
}

// ListEntries returns the user's entries newest first. limit <= 0 returns all.
func (r *Repo) ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error) {
	return list(ctx, r.store, entries, userID, limit)
}

// DeleteEntry removes an entry. Deleting a missing entry is not an error.
func (r *Repo) DeleteEntry(ctx context.Context, userID, id string) error {
	return remove(ctx, r.store, entries, userID, id)
}

// SaveHabit creates or replaces a habit.
func (r *Repo) SaveHabit(ctx context.Context, h *domjournal.Habit) error {
	return save(ctx, r.store, habits, h.UserID(), h.ID(), float64(h.CreatedAt()), habitToHash(h))
}

// GetHabit returns one of the user's habits.
func (r *Repo) GetHabit(ctx context.Context, userID, id string) (domjournal.Habit, error) {
	return get(ctx, r.store, habits, userID, id)
}

// ListHabits returns the user's habits, oldest first.
func (r *Repo) ListHabits(ctx context.Context, userID string) ([]domjournal.Habit, error) {
	out, err := list(ctx, r.store, habits, userID, 0)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// DeleteHabit removes a habit. Deleting a missing habit is not an error.
func (r *Repo) DeleteHabit(ctx context.Context, userID, id string) error {
	return remove(ctx, r.store, habits, userID, id)
}

// SaveReminder creates or replaces a reminder.
func (r *Repo) SaveReminder(ctx context.Context, rem *domjournal.Reminder) error {
	return save(ctx, r.store, reminders, rem.UserID(), rem.ID(), float64(rem.CreatedAt()), reminderToHash(rem))
}

// GetReminder returns one of the user's reminders.
func (r *Repo) GetReminder(ctx context.Context, userID, id string) (domjournal.Reminder, error) {
	return get(ctx, r.store, reminders, userID, id)
}

// ListReminders returns the user's reminders ordered by date, then creation time.
func (r *Repo) ListReminders(ctx context.Context, userID string) ([]domjournal.Reminder, error) {
	out, err := list(ctx, r.store, reminders, userID, 0)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date() != out[j].Date() {
			return out[i].Date() < out[j].Date()
		}
		return out[i].CreatedAt() < out[j].CreatedAt()
	})
	return out, nil
}

// DeleteReminder removes a reminder. Deleting a missing reminder is not an error.
func (r *Repo) DeleteReminder(ctx context.Context, userID, id string) error {
	return remove(ctx, r.store, reminders, userID, id)
}

// SaveTask creates or replaces a task.
func (r *Repo) SaveTask(ctx context.Context, t *domjournal.Task) error {
	return save(ctx, r.store, tasks, t.UserID(), t.ID(), float64(t.CreatedAt()), taskToHash(t))
}

// GetTask returns one of the user's tasks.
func (r *Repo) GetTask(ctx context.Context, userID, id string) (domjournal.Task, error) {
	return get(ctx, r.store, tasks, userID, id)
}

// ListTasks returns the user's tasks, newest first.
func (r *Repo) ListTasks(ctx context.Context, userID string) ([]domjournal.Task, error) {
	return list(ctx, r.store, tasks, userID, 0)
}

// DeleteTask removes a task. Deleting a missing task is not an error.
func (r *Repo) DeleteTask(ctx context.Context, userID, id string) error {
	return remove(ctx, r.store, tasks, userID, id)
}

// kind binds a record type to its key names and hash decoder.
type kind[T any] struct {
	name   string
	index  string
	decode func(id string, m map[string]string) (T, error)
}

func (k kind[T]) recordKey(userID, id string) string {
	return fmt.Sprintf("%sdata:%s:%s:%s", domain.KeyPrefix, userID, k.name, id)
}

func (k kind[T]) indexKey(userID string) string {
	return fmt.Sprintf("%sdata:%s:%s", domain.KeyPrefix, userID, k.index)
}

func save[T any](ctx context.Context, s store, k kind[T], userID, id string, score float64, fields map[string]string) error {
	key := k.recordKey(userID, id)
	if err := s.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if err := s.ZAdd(ctx, k.indexKey(userID), score, id); err != nil {
		return fmt.Errorf("index %s %s: %w", k.name, id, err)
	}
	return nil
}

func get[T any](ctx context.Context, s store, k kind[T], userID, id string) (T, error) {
	var zero T
	key := k.recordKey(userID, id)
	m, err := s.HGetAll(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return zero, fmt.Errorf("%s %s: %w", k.name, id, domain.ErrNotFound)
	}
	return k.decode(id, m)
}

func list[T any](ctx context.Context, s store, k kind[T], userID string, limit int) ([]T, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.ZRevRange(ctx, k.indexKey(userID), 0, stop)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", k.name, err)
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = k.recordKey(userID, id)
	}
	maps, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", k.index, err)
	}

	out := make([]T, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			// index entry left behind by an interrupted delete
			continue
		}
		rec, err := k.decode(ids[i], m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func remove[T any](ctx context.Context, s store, k kind[T], userID, id string) error {
	key := k.recordKey(userID, id)
	if err := s.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := s.ZRem(ctx, k.indexKey(userID), id); err != nil {
		return fmt.Errorf("unindex %s %s: %w", k.name, id, err)
	}
	return nil
}
