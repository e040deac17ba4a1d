package journal

import (
	"context"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
)

// Repository defines the storage contract for user-owned records.
// Get of a missing or foreign record returns domain.ErrNotFound; Delete of one is a no-op.
type Repository interface {
	SaveEntry(ctx context.Context, e *domjournal.Entry) error
	GetEntry(ctx context.Context, userID, id string) (domjournal.Entry, error)
	ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error

	SaveHabit(ctx context.Context, h *domjournal.Habit) error
	GetHabit(ctx context.Context, userID, id string) (domjournal.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]domjournal.Habit, error)
	DeleteHabit(ctx context.Context, userID, id string) error

	SaveReminder(ctx context.Context, r *domjournal.Reminder) error
	GetReminder(ctx context.Context, userID, id string) (domjournal.Reminder, error)
	ListReminders(ctx context.Context, userID string) ([]domjournal.Reminder, error)
	DeleteReminder(ctx context.Context, userID, id string) error

	SaveTask(ctx context.Context, t *domjournal.Task) error
	GetTask(ctx context.Context, userID, id string) (domjournal.Task, error)
	ListTasks(ctx context.Context, userID string) ([]domjournal.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}
