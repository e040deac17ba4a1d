package journal

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// DefaultHabitIcon is used when a habit is created without an icon.
const DefaultHabitIcon = "✅"

const maxHabitNameRunes = 100

// HabitInput carries the client-editable fields of a habit.
// IsActive is a pointer so an omitted field keeps the default (true).
type HabitInput struct {
	Name     string
	Icon     string
	IsActive *bool
}

// Habit is a tracked habit.
type Habit struct {
	id        string
	userID    string
	name      string
	icon      string
	isActive  bool
	createdAt int64
}

// NewHabit validates and creates a Habit.
func NewHabit(id, userID string, in HabitInput, createdAt int64) (Habit, error) {
	h := Habit{id: id, userID: userID, createdAt: createdAt}
	if err := h.apply(in); err != nil {
		return Habit{}, err
	}
	return h, nil
}

// Update returns a copy with the editable fields replaced by in.
func (h *Habit) Update(in HabitInput) (Habit, error) {
	next := Habit{id: h.id, userID: h.userID, createdAt: h.createdAt}
	if err := next.apply(in); err != nil {
		return Habit{}, err
	}
	return next, nil
}

func (h *Habit) apply(in HabitInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxHabitNameRunes {
		return domain.NewValidationError("name", "is too long")
	}
	h.name = name
	h.icon = orDefault(in.Icon, DefaultHabitIcon)
	h.isActive = in.IsActive == nil || *in.IsActive
	return nil
}

// ReconstructHabit creates a Habit without validation (storage hydration).
func ReconstructHabit(id, userID, name, icon string, isActive bool, createdAt int64) Habit {
	return Habit{id: id, userID: userID, name: name, icon: icon, isActive: isActive, createdAt: createdAt}
}

func (h *Habit) ID() string       { return h.id }
func (h *Habit) UserID() string   { return h.userID }
func (h *Habit) Name() string     { return h.name }
func (h *Habit) Icon() string     { return h.icon }
func (h *Habit) IsActive() bool   { return h.isActive }
func (h *Habit) CreatedAt() int64 { return h.createdAt }
