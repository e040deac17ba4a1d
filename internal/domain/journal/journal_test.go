package journal

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

var now = time.Date(2026, time.March, 7, 9, 30, 0, 0, time.UTC)

func TestNewEntry_Defaults(t *testing.T) {
	e, err := NewEntry("e1", "u1", EntryInput{Content: "went for a run"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Title() != DefaultTitle || e.Folder() != DefaultFolder || e.Mood() != DefaultMood {
		t.Errorf("defaults not applied: title=%q folder=%q mood=%q", e.Title(), e.Folder(), e.Mood())
	}
	if e.Date() != "2026-03-07" {
		t.Errorf("date = %q, want today", e.Date())
	}
	if e.CreatedAt() != now.UnixMilli() || e.UpdatedAt() != now.UnixMilli() {
		t.Errorf("timestamps not set")
	}
	if e.SearchText() != "Untitled went for a run" {
		t.Errorf("SearchText = %q", e.SearchText())
	}
}

func TestNewEntry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    EntryInput
		field string
	}{
		{"bad date", EntryInput{Date: "07/03/2026"}, "date"},
		{"content too large", EntryInput{Content: strings.Repeat("x", MaxContentSize+1)}, "content"},
		{"title too long", EntryInput{Title: strings.Repeat("t", MaxTitleRunes+1)}, "title"},
		{"too many tags", EntryInput{Tags: make([]string, MaxTags+1)}, "tags"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEntry("e1", "u1", tc.in, now)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Errorf("expected validation error on %q, got %v", tc.field, err)
			}
		})
	}
}

func TestNewEntry_NormalizesLists(t *testing.T) {
	e, err := NewEntry("e1", "u1", EntryInput{
		Tags:              []string{"Running", "running", " ", "park"},
		CompletedHabitIDs: []string{"h1", "h1", "h2"},
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(e.Tags(), []string{"running", "park"}) {
		t.Errorf("tags = %v", e.Tags())
	}
	if !reflect.DeepEqual(e.CompletedHabitIDs(), []string{"h1", "h2"}) {
		t.Errorf("habit ids = %v", e.CompletedHabitIDs())
	}
}

func TestEntry_UpdateKeepsIdentity(t *testing.T) {
	e, _ := NewEntry("e1", "u1", EntryInput{Title: "Draft"}, now)
	later := now.Add(time.Hour)

	updated, err := e.Update(EntryInput{Title: "Final", Content: "done", Date: "2026-03-01"}, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID() != "e1" || updated.UserID() != "u1" || updated.CreatedAt() != now.UnixMilli() {
		t.Errorf("identity changed: %+v", updated)
	}
	if updated.Title() != "Final" || updated.Date() != "2026-03-01" || updated.UpdatedAt() != later.UnixMilli() {
		t.Errorf("fields not updated: %+v", updated)
	}
	if e.Title() != "Draft" {
		t.Error("original entry must not change")
	}
}

func TestNewHabit(t *testing.T) {
	h, err := NewHabit("h1", "u1", HabitInput{Name: "  Run "}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Name() != "Run" || h.Icon() != DefaultHabitIcon || !h.IsActive() {
		t.Errorf("unexpected habit %+v", h)
	}

	inactive := false
	h2, err := h.Update(HabitInput{Name: "Run", Icon: "🏃", IsActive: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h2.IsActive() || h2.Icon() != "🏃" {
		t.Errorf("update not applied: %+v", h2)
	}

	if _, err := NewHabit("h2", "u1", HabitInput{}, 1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestNewReminder(t *testing.T) {
	tests := []struct {
		name    string
		in      ReminderInput
		wantErr bool
	}{
		{"valid", ReminderInput{Text: "dentist", Date: "2026-04-01"}, false},
		{"missing text", ReminderInput{Date: "2026-04-01"}, true},
		{"missing date", ReminderInput{Text: "dentist"}, true},
		{"bad date", ReminderInput{Text: "dentist", Date: "tomorrow"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReminder("r1", "u1", tc.in, 1)
			if tc.wantErr != errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewTask_Color(t *testing.T) {
	task, err := NewTask("t1", "u1", TaskInput{Text: "buy milk"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Color() != ColorDefault {
		t.Errorf("color = %q, want default", task.Color())
	}

	if _, err := NewTask("t2", "u1", TaskInput{Text: "x", Color: "magenta"}, 1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown color, got %v", err)
	}

	done, err := task.Update(TaskInput{Text: "buy milk", Completed: true, Color: "green"})
	if err != nil || !done.Completed() || done.Color() != ColorGreen {
		t.Errorf("unexpected update result %+v, %v", done, err)
	}
}
