package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// --- Mocks ---

type mockUsers struct {
	users   map[string]domuser.User
	ids     []string // listed IDs; defaults to the keys of users
	listErr error
}

func (m *mockUsers) ListIDs(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.ids != nil {
		return m.ids, nil
	}
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockUsers) Get(_ context.Context, id string) (domuser.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domuser.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

type mockRecords struct {
	entries   []domjournal.Entry
	habits    []domjournal.Habit
	reminders []domjournal.Reminder
	tasks     []domjournal.Task
	tasksErr  error
	limit     int
}

func (m *mockRecords) ListEntries(_ context.Context, _ string, limit int) ([]domjournal.Entry, error) {
	m.limit = limit
	return m.entries, nil
}

func (m *mockRecords) ListHabits(_ context.Context, _ string) ([]domjournal.Habit, error) {
	return m.habits, nil
}

func (m *mockRecords) ListReminders(_ context.Context, _ string) ([]domjournal.Reminder, error) {
	return m.reminders, nil
}

func (m *mockRecords) ListTasks(_ context.Context, _ string) ([]domjournal.Task, error) {
	return m.tasks, m.tasksErr
}

// --- Helpers ---

var exportedAt = time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC)

func fixture(t *testing.T) (*mockUsers, *mockRecords) {
	t.Helper()
	u, err := domuser.New("u1", domuser.Identity{Subject: "g-1", Email: "ana@example.com", Name: "Ana"}, 1)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	e, err := domjournal.NewEntry("e1", "u1", domjournal.EntryInput{
		Title: "Morning Run", Content: "Ran 5k", Tags: []string{"fitness"},
	}, exportedAt.Add(-time.Hour))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	h, _ := domjournal.NewHabit("h1", "u1", domjournal.HabitInput{Name: "Run"}, 1)
	r, _ := domjournal.NewReminder("r1", "u1", domjournal.ReminderInput{Text: "dentist", Date: "2026-05-10"}, 1)
	tk, _ := domjournal.NewTask("t1", "u1", domjournal.TaskInput{Text: "milk", Color: "red"}, 1)

	return &mockUsers{users: map[string]domuser.User{"u1": u}},
		&mockRecords{
			entries:   []domjournal.Entry{e},
			habits:    []domjournal.Habit{h},
			reminders: []domjournal.Reminder{r},
			tasks:     []domjournal.Task{tk},
		}
}

// --- Tests ---

func TestWriteJSON_Shape(t *testing.T) {
	users, records := fixture(t)
	svc := New(users, records).WithClock(func() time.Time { return exportedAt })

	var buf bytes.Buffer
	if err := svc.WriteJSON(context.Background(), "u1", &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, k := range []string{"exported_at", "user", "entries", "habits", "reminders", "tasks"} {
		if _, ok := got[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !doc.ExportedAt.Equal(exportedAt) {
		t.Errorf("exported_at = %v", doc.ExportedAt)
	}
	if len(doc.Entries) != 1 || doc.Entries[0].Title != "Morning Run" || doc.Entries[0].Tags[0] != "fitness" {
		t.Errorf("entries = %+v", doc.Entries)
	}
	if doc.Tasks[0].Color != "red" || doc.Reminders[0].Date != "2026-05-10" || !doc.Habits[0].IsActive {
		t.Errorf("records = %+v %+v %+v", doc.Tasks, doc.Reminders, doc.Habits)
	}
	if records.limit != 0 {
		t.Errorf("export must not limit entries, got %d", records.limit)
	}
}

// bufferCloser records whether the export closed its destination.
type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestWriteAllJSON(t *testing.T) {
	users, records := fixture(t)
	u2, err := domuser.New("u2", domuser.Identity{Subject: "g-2", Email: "bo@example.com", Name: "Bo"}, 1)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	users.users["u2"] = u2
	users.ids = []string{"u2", "ghost", "u1"}
	svc := New(users, records).WithClock(func() time.Time { return exportedAt })

	outs := map[string]*bufferCloser{}
	var order []string
	written, err := svc.WriteAllJSON(context.Background(), func(id string) (io.WriteCloser, error) {
		order = append(order, id)
		outs[id] = &bufferCloser{}
		return outs[id], nil
	})
	if err != nil {
		t.Fatalf("WriteAllJSON: %v", err)
	}

	if !reflect.DeepEqual(written, []string{"u1", "u2"}) {
		t.Errorf("written = %v, want [u1 u2] (ghost skipped)", written)
	}
	if !reflect.DeepEqual(order, written) {
		t.Errorf("opened = %v", order)
	}
	for _, id := range written {
		var doc Document
		if err := json.Unmarshal(outs[id].Bytes(), &doc); err != nil {
			t.Fatalf("%s: invalid JSON: %v", id, err)
		}
		if doc.User.ID != id {
			t.Errorf("document for %s has user %q", id, doc.User.ID)
		}
		if !outs[id].closed {
			t.Errorf("destination for %s not closed", id)
		}
	}
}

func TestWriteAllJSON_Errors(t *testing.T) {
	open := func(string) (io.WriteCloser, error) { return &bufferCloser{}, nil }

	t.Run("list failure", func(t *testing.T) {
		users, records := fixture(t)
		users.listErr = errors.New("connection refused")
		if _, err := New(users, records).WriteAllJSON(context.Background(), open); !errors.Is(err, users.listErr) {
			t.Errorf("err = %v, want list error", err)
		}
	})

	t.Run("open failure", func(t *testing.T) {
		users, records := fixture(t)
		openErr := errors.New("permission denied")
		written, err := New(users, records).WriteAllJSON(context.Background(),
			func(string) (io.WriteCloser, error) { return nil, openErr })
		if !errors.Is(err, openErr) || len(written) != 0 {
			t.Errorf("written = %v, err = %v", written, err)
		}
	})
}

func TestExport_Errors(t *testing.T) {
	users, records := fixture(t)

	if _, err := New(users, records).Export(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}

	records.tasksErr = errors.New("connection refused")
	if _, err := New(users, records).Export(context.Background(), "u1"); !errors.Is(err, records.tasksErr) {
		t.Errorf("expected list error, got %v", err)
	}
}

func TestWriteAtom(t *testing.T) {
	users, records := fixture(t)
	svc := New(users, records).WithClock(func() time.Time { return exportedAt })

	var buf bytes.Buffer
	if err := svc.WriteAtom(context.Background(), "u1", "https://lifeos.example/", &buf); err != nil {
		t.Fatalf("WriteAtom: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<feed xmlns="http://www.w3.org/2005/Atom"`,
		"s journal</title>",
		"Morning Run",
		"https://lifeos.example/entries/e1",
		"urn:uuid:e1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q:\n%s", want, out)
		}
	}
	if records.limit != FeedSize {
		t.Errorf("feed limit = %d, want %d", records.limit, FeedSize)
	}
}
