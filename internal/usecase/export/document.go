package export

import (
	"time"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// Document is the JSON export of one user's data.
type Document struct {
	ExportedAt time.Time  `json:"exported_at"`
	User       User       `json:"user"`
	Entries    []Entry    `json:"entries"`
	Habits     []Habit    `json:"habits"`
	Reminders  []Reminder `json:"reminders"`
	Tasks      []Task     `json:"tasks"`
}

// User is the exported account.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Entry is an exported journal entry.
type Entry struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Folder            string    `json:"folder"`
	Mood              string    `json:"mood"`
	Date              string    `json:"date"`
	CompletedHabitIDs []string  `json:"completed_habit_ids"`
	Tags              []string  `json:"tags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Habit is an exported habit.
type Habit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"is_active"`
}

// Reminder is an exported reminder.
type Reminder struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Task is an exported task.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func newDocument(now time.Time, u *domuser.User, s *snapshot) Document {
	doc := Document{
		ExportedAt: now.UTC(),
		User:       User{ID: u.ID(), Email: u.Email(), Name: u.Name(), Picture: u.Picture()},
		Entries:    make([]Entry, len(s.entries)),
		Habits:     make([]Habit, len(s.habits)),
		Reminders:  make([]Reminder, len(s.reminders)),
		Tasks:      make([]Task, len(s.tasks)),
	}
	for i := range s.entries {
		e := &s.entries[i]
		doc.Entries[i] = Entry{
			ID: e.ID(), Title: e.Title(), Content: e.Content(), Folder: e.Folder(), Mood: e.Mood(),
			Date: e.Date(), CompletedHabitIDs: e.CompletedHabitIDs(), Tags: e.Tags(),
			CreatedAt: millis(e.CreatedAt()), UpdatedAt: millis(e.UpdatedAt()),
		}
	}
	for i := range s.habits {
		h := &s.habits[i]
		doc.Habits[i] = Habit{ID: h.ID(), Name: h.Name(), Icon: h.Icon(), IsActive: h.IsActive()}
	}
	for i := range s.reminders {
		r := &s.reminders[i]
		doc.Reminders[i] = Reminder{ID: r.ID(), Text: r.Text(), Date: r.Date(), Completed: r.Completed()}
	}
	for i := range s.tasks {
		t := &s.tasks[i]
		doc.Tasks[i] = Task{
			ID: t.ID(), Text: t.Text(), Completed: t.Completed(),
			Color: string(t.Color()), CreatedAt: millis(t.CreatedAt()),
		}
	}
	return doc
}

func millis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type snapshot struct {
	entries   []domjournal.Entry
	habits    []domjournal.Habit
	reminders []domjournal.Reminder
	tasks     []domjournal.Task
}
