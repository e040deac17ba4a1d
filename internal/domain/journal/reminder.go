package journal

import (
	"strings"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// ReminderInput carries the client-editable fields of a reminder.
type ReminderInput struct {
	Text      string
	Date      string
	Completed bool
}

// Reminder is a dated to-do shown on the calendar.
type Reminder struct {
	id        string
	userID    string
	text      string
	date      string
	completed bool
	createdAt int64
}

// NewReminder validates and creates a Reminder. Both text and date are required.
func NewReminder(id, userID string, in ReminderInput, createdAt int64) (Reminder, error) {
	r := Reminder{id: id, userID: userID, createdAt: createdAt}
	if err := r.apply(in); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// Update returns a copy with the editable fields replaced by in.
func (r *Reminder) Update(in ReminderInput) (Reminder, error) {
	next := Reminder{id: r.id, userID: r.userID, createdAt: r.createdAt}
	if err := next.apply(in); err != nil {
		return Reminder{}, err
	}
	return next, nil
}

func (r *Reminder) apply(in ReminderInput) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.NewValidationError("text", "is required")
	}
	if in.Date == "" {
		return domain.NewValidationError("date", "is required")
	}
	if err := validateDate(in.Date); err != nil {
		return err
	}
	r.text = text
	r.date = in.Date
	r.completed = in.Completed
	return nil
}

// ReconstructReminder creates a Reminder without validation (storage hydration).
func ReconstructReminder(id, userID, text, date string, completed bool, createdAt int64) Reminder {
	return Reminder{id: id, userID: userID, text: text, date: date, completed: completed, createdAt: createdAt}
}

func (r *Reminder) ID() string       { return r.id }
func (r *Reminder) UserID() string   { return r.userID }
func (r *Reminder) Text() string     { return r.text }
func (r *Reminder) Date() string     { return r.date }
func (r *Reminder) Completed() bool  { return r.completed }
func (r *Reminder) CreatedAt() int64 { return r.createdAt }
