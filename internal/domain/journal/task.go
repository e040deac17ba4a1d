package journal

import (
	"strings"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// Color is a task label color.
type Color string

// Supported task colors.
const (
	ColorDefault Color = "default"
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
)

// IsValid reports whether c is a supported color.
func (c Color) IsValid() bool {
	switch c {
	case ColorDefault, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple:
		return true
	}
	return false
}

// TaskInput carries the client-editable fields of a task.
type TaskInput struct {
	Text      string
	Completed bool
	Color     string
}

// Task is a short to-do item.
type Task struct {
	id        string
	userID    string
	text      string
	completed bool
	color     Color
	createdAt int64
}

// NewTask validates and creates a Task. An empty color means ColorDefault.
func NewTask(id, userID string, in TaskInput, createdAt int64) (Task, error) {
	t := Task{id: id, userID: userID, createdAt: createdAt}
	if err := t.apply(in); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update returns a copy with the editable fields replaced by in.
func (t *Task) Update(in TaskInput) (Task, error) {
	next := Task{id: t.id, userID: t.userID, createdAt: t.createdAt}
	if err := next.apply(in); err != nil {
		return Task{}, err
	}
	return next, nil
}

func (t *Task) apply(in TaskInput) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.NewValidationError("text", "is required")
	}
	color := Color(orDefault(in.Color, string(ColorDefault)))
	if !color.IsValid() {
		return domain.NewValidationError("color", "is not supported")
	}
	t.text = text
	t.completed = in.Completed
	t.color = color
	return nil
}

// ReconstructTask creates a Task without validation (storage hydration).
func ReconstructTask(id, userID, text string, completed bool, color Color, createdAt int64) Task {
	return Task{id: id, userID: userID, text: text, completed: completed, color: color, createdAt: createdAt}
}

func (t *Task) ID() string       { return t.id }
func (t *Task) UserID() string   { return t.userID }
func (t *Task) Text() string     { return t.text }
func (t *Task) Completed() bool  { return t.completed }
func (t *Task) Color() Color     { return t.color }
func (t *Task) CreatedAt() int64 { return t.createdAt }
