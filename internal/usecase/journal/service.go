// Package journal implements CRUD over a user's entries, habits, reminders and tasks.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
)

// MaxListLimit caps the number of entries a single list call returns.
const MaxListLimit = 1000

// Service handles record CRUD scoped to one user per call.
type Service struct {
	repo  Repository
	newID func() string
	now   func() time.Time
}

// New creates a journal service issuing UUIDv4 identifiers.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithIDGenerator overrides the identifier source.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	if gen != nil {
		s.newID = gen
	}
	return s
}

// --- Entries ---

// CreateEntry validates in and stores a new entry owned by userID.
func (s *Service) CreateEntry(ctx context.Context, userID string, in domjournal.EntryInput) (domjournal.Entry, error) {
	e, err := domjournal.NewEntry(s.newID(), userID, in, s.now())
	if err != nil {
		return domjournal.Entry{}, fmt.Errorf("new entry: %w", err)
	}
	if err := s.repo.SaveEntry(ctx, &e); err != nil {
		return domjournal.Entry{}, fmt.Errorf("save entry: %w", err)
	}
	return e, nil
}

// GetEntry returns one of the user's entries.
func (s *Service) GetEntry(ctx context.Context, userID, id string) (domjournal.Entry, error) {
	e, err := s.repo.GetEntry(ctx, userID, id)
	if err != nil {
		return domjournal.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns the user's entries, newest first. limit <= 0 means MaxListLimit.
func (s *Service) ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	list, err := s.repo.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return list, nil
}

// UpdateEntry replaces the editable fields of an existing entry.
func (s *Service) UpdateEntry(
	ctx context.Context, userID, id string, in domjournal.EntryInput,
) (domjournal.Entry, error) {
	cur, err := s.repo.GetEntry(ctx, userID, id)
	if err != nil {
		return domjournal.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	next, err := cur.Update(in, s.now())
	if err != nil {
		return domjournal.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	if err := s.repo.SaveEntry(ctx, &next); err != nil {
		return domjournal.Entry{}, fmt.Errorf("save entry: %w", err)
	}
	return next, nil
}

// DeleteEntry removes an entry. Deleting a missing entry succeeds.
func (s *Service) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteEntry(ctx, userID, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// --- Habits ---

// CreateHabit stores a new habit.
func (s *Service) CreateHabit(ctx context.Context, userID string, in domjournal.HabitInput) (domjournal.Habit, error) {
	h, err := domjournal.NewHabit(s.newID(), userID, in, s.now().UnixMilli())
	if err != nil {
		return domjournal.Habit{}, fmt.Errorf("new habit: %w", err)
	}
	if err := s.repo.SaveHabit(ctx, &h); err != nil {
		return domjournal.Habit{}, fmt.Errorf("save habit: %w", err)
	}
	return h, nil
}

// ListHabits returns the user's habits in creation order.
func (s *Service) ListHabits(ctx context.Context, userID string) ([]domjournal.Habit, error) {
	list, err := s.repo.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return list, nil
}

// UpdateHabit replaces the editable fields of a habit.
func (s *Service) UpdateHabit(
	ctx context.Context, userID, id string, in domjournal.HabitInput,
) (domjournal.Habit, error) {
	cur, err := s.repo.GetHabit(ctx, userID, id)
	if err != nil {
		return domjournal.Habit{}, fmt.Errorf("get habit: %w", err)
	}
	next, err := cur.Update(in)
	if err != nil {
		return domjournal.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	if err := s.repo.SaveHabit(ctx, &next); err != nil {
		return domjournal.Habit{}, fmt.Errorf("save habit: %w", err)
	}
	return next, nil
}

// DeleteHabit removes a habit.
func (s *Service) DeleteHabit(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteHabit(ctx, userID, id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// --- Reminders ---

// CreateReminder stores a new reminder.
func (s *Service) CreateReminder(
	ctx context.Context, userID string, in domjournal.ReminderInput,
) (domjournal.Reminder, error) {
	r, err := domjournal.NewReminder(s.newID(), userID, in, s.now().UnixMilli())
	if err != nil {
		return domjournal.Reminder{}, fmt.Errorf("new reminder: %w", err)
	}
	if err := s.repo.SaveReminder(ctx, &r); err != nil {
		return domjournal.Reminder{}, fmt.Errorf("save reminder: %w", err)
	}
	return r, nil
}

// ListReminders returns the user's reminders ordered by date.
func (s *Service) ListReminders(ctx context.Context, userID string) ([]domjournal.Reminder, error) {
	list, err := s.repo.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return list, nil
}

// UpdateReminder replaces the editable fields of a reminder.
func (s *Service) UpdateReminder(
	ctx context.Context, userID, id string, in domjournal.ReminderInput,
) (domjournal.Reminder, error) {
	cur, err := s.repo.GetReminder(ctx, userID, id)
	if err != nil {
		return domjournal.Reminder{}, fmt.Errorf("get reminder: %w", err)
	}
	next, err := cur.Update(in)
	if err != nil {
		return domjournal.Reminder{}, fmt.Errorf("update reminder: %w", err)
	}
	if err := s.repo.SaveReminder(ctx, &next); err != nil {
		return domjournal.Reminder{}, fmt.Errorf("save reminder: %w", err)
	}
	return next, nil
}

// DeleteReminder removes a reminder.
func (s *Service) DeleteReminder(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteReminder(ctx, userID, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// --- Tasks ---

// CreateTask stores a new task.
func (s *Service) CreateTask(ctx context.Context, userID string, in domjournal.TaskInput) (domjournal.Task, error) {
	t, err := domjournal.NewTask(s.newID(), userID, in, s.now().UnixMilli())
	if err != nil {
		return domjournal.Task{}, fmt.Errorf("new task: %w", err)
	}
	if err := s.repo.SaveTask(ctx, &t); err != nil {
		return domjournal.Task{}, fmt.Errorf("save task: %w", err)
	}
	return t, nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Service) ListTasks(ctx context.Context, userID string) ([]domjournal.Task, error) {
	list, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// UpdateTask replaces the editable fields of a task.
func (s *Service) UpdateTask(
	ctx context.Context, userID, id string, in domjournal.TaskInput,
) (domjournal.Task, error) {
	cur, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return domjournal.Task{}, fmt.Errorf("get task: %w", err)
	}
	next, err := cur.Update(in)
	if err != nil {
		return domjournal.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := s.repo.SaveTask(ctx, &next); err != nil {
		return domjournal.Task{}, fmt.Errorf("save task: %w", err)
	}
	return next, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteTask(ctx, userID, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
