package journal

import (
	"encoding/json"
	"fmt"
	"strconv"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
)

var (
	entries   = kind[domjournal.Entry]{name: "entry", index: "entries", decode: entryFromHash}
	habits    = kind[domjournal.Habit]{name: "habit", index: "habits", decode: habitFromHash}
	reminders = kind[domjournal.Reminder]{name: "reminder", index: "reminders", decode: reminderFromHash}
	tasks     = kind[domjournal.Task]{name: "task", index: "tasks", decode: taskFromHash}
)

func entryToHash(e *domjournal.Entry) map[string]string {
	return map[string]string{
		"user_id":             e.UserID(),
		"title":               e.Title(),
		"content":             e.Content(),
		"folder":              e.Folder(),
		"mood":                e.Mood(),
		"date":                e.Date(),
		"completed_habit_ids": encodeList(e.CompletedHabitIDs()),
		"tags":                encodeList(e.Tags()),
		"created_at":          strconv.FormatInt(e.CreatedAt(), 10),
		"updated_at":          strconv.FormatInt(e.UpdatedAt(), 10),
	}
}

func entryFromHash(id string, m map[string]string) (domjournal.Entry, error) {
	habitIDs, err := decodeList(m["completed_habit_ids"])
	if err != nil {
		return domjournal.Entry{}, fmt.Errorf("entry %s completed_habit_ids: %w", id, err)
	}
	tags, err := decodeList(m["tags"])
	if err != nil {
		return domjournal.Entry{}, fmt.Errorf("entry %s tags: %w", id, err)
	}
	return domjournal.ReconstructEntry(
		id, m["user_id"], m["title"], m["content"], m["folder"], m["mood"], m["date"],
		habitIDs, tags, parseInt(m["created_at"]), parseInt(m["updated_at"]),
	), nil
}

func habitToHash(h *domjournal.Habit) map[string]string {
	return map[string]string{
		"user_id":    h.UserID(),
		"name":       h.Name(),
		"icon":       h.Icon(),
		"is_active":  strconv.FormatBool(h.IsActive()),
		"created_at": strconv.FormatInt(h.CreatedAt(), 10),
	}
}

func habitFromHash(id string, m map[string]string) (domjournal.Habit, error) {
	return domjournal.ReconstructHabit(
		id, m["user_id"], m["name"], m["icon"], parseBool(m["is_active"]), parseInt(m["created_at"]),
	), nil
}

func reminderToHash(r *domjournal.Reminder) map[string]string {
	return map[string]string{
		"user_id":    r.UserID(),
		"text":       r.Text(),
		"date":       r.Date(),
		"completed":  strconv.FormatBool(r.Completed()),
		"created_at": strconv.FormatInt(r.CreatedAt(), 10),
	}
}

func reminderFromHash(id string, m map[string]string) (domjournal.Reminder, error) {
	return domjournal.ReconstructReminder(
		id, m["user_id"], m["text"], m["date"], parseBool(m["completed"]), parseInt(m["created_at"]),
	), nil
}

func taskToHash(t *domjournal.Task) map[string]string {
	return map[string]string{
		"user_id":    t.UserID(),
		"text":       t.Text(),
		"completed":  strconv.FormatBool(t.Completed()),
		"color":      string(t.Color()),
		"created_at": strconv.FormatInt(t.CreatedAt(), 10),
	}
}

func taskFromHash(id string, m map[string]string) (domjournal.Task, error) {
	color := domjournal.Color(m["color"])
	if !color.IsValid() {
		color = domjournal.ColorDefault
	}
	return domjournal.ReconstructTask(
		id, m["user_id"], m["text"], parseBool(m["completed"]), color, parseInt(m["created_at"]),
	), nil
}

// encodeList stores string lists as a JSON array in a single hash field.
func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(items) //nolint:errchkjson // []string always marshals
	return string(data)
}

func decodeList(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
