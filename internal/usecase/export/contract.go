package export

import (
	"context"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// UserReader loads accounts to export.
type UserReader interface {
	Get(ctx context.Context, id string) (domuser.User, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// RecordLister lists every kind of user-owned record.
type RecordLister interface {
	ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error)
	ListHabits(ctx context.Context, userID string) ([]domjournal.Habit, error)
	ListReminders(ctx context.Context, userID string) ([]domjournal.Reminder, error)
	ListTasks(ctx context.Context, userID string) ([]domjournal.Task, error)
}
