package chi

import (
	"context"
	"io"
	"net/http"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	"github.com/kailas-cloud/lifeos/internal/domain/ranking"
	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
	authuc "github.com/kailas-cloud/lifeos/internal/usecase/auth"
	exportuc "github.com/kailas-cloud/lifeos/internal/usecase/export"
	healthuc "github.com/kailas-cloud/lifeos/internal/usecase/health"
)

// Authenticator signs users in and resolves session tokens.
type Authenticator interface {
	SignInWithIDToken(ctx context.Context, credential string) (authuc.Session, error)
	SignInWithCode(ctx context.Context, code string) (authuc.Session, error)
	Authenticate(ctx context.Context, token string) (domuser.User, error)
}

// JournalService manages a user's entries, habits, reminders and tasks.
type JournalService interface {
	CreateEntry(ctx context.Context, userID string, in domjournal.EntryInput) (domjournal.Entry, error)
	GetEntry(ctx context.Context, userID, id string) (domjournal.Entry, error)
	ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error)
	UpdateEntry(ctx context.Context, userID, id string, in domjournal.EntryInput) (domjournal.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error

	CreateHabit(ctx context.Context, userID string, in domjournal.HabitInput) (domjournal.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]domjournal.Habit, error)
	UpdateHabit(ctx context.Context, userID, id string, in domjournal.HabitInput) (domjournal.Habit, error)
	DeleteHabit(ctx context.Context, userID, id string) error

	CreateReminder(ctx context.Context, userID string, in domjournal.ReminderInput) (domjournal.Reminder, error)
	ListReminders(ctx context.Context, userID string) ([]domjournal.Reminder, error)
	UpdateReminder(ctx context.Context, userID, id string, in domjournal.ReminderInput) (domjournal.Reminder, error)
	DeleteReminder(ctx context.Context, userID, id string) error

	CreateTask(ctx context.Context, userID string, in domjournal.TaskInput) (domjournal.Task, error)
	ListTasks(ctx context.Context, userID string) ([]domjournal.Task, error)
	UpdateTask(ctx context.Context, userID, id string, in domjournal.TaskInput) (domjournal.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// Searcher ranks a user's entries against a query.
type Searcher interface {
	Search(ctx context.Context, userID, query string) ([]ranking.Scored[domjournal.Entry], error)
}

// Tagger suggests tags for a piece of text.
type Tagger interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// Exporter renders a user's data.
type Exporter interface {
	Export(ctx context.Context, userID string) (exportuc.Document, error)
	WriteAtom(ctx context.Context, userID, baseURL string, w io.Writer) error
}

// UsageReporter reports embedding budget consumption.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ClientHub attaches WebSocket connections to the broadcast hub.
type ClientHub interface {
	Serve(w http.ResponseWriter, r *http.Request, clientID string) error
}
