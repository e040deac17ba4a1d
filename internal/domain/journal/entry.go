// Package journal holds the user-owned records: entries, habits, reminders and tasks.
package journal

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// Entry defaults and limits.
const (
	DefaultTitle  = "Untitled"
	DefaultFolder = "Journal"
	DefaultMood   = "😐"

	MaxContentSize = 163840 // 160KB
	MaxTitleRunes  = 200
	MaxTags        = 32

	dateLayout = "2006-01-02"
)

// EntryInput carries the client-editable fields of an entry.
type EntryInput struct {
	Title             string
	Content           string
	Folder            string
	Mood              string
	Date              string
	CompletedHabitIDs []string
	Tags              []string
}

// Entry is a journal entry aggregate (immutable value object).
type Entry struct {
	id                string
	userID            string
	title             string
	content           string
	folder            string
	mood              string
	date              string
	completedHabitIDs []string
	tags              []string
	createdAt         int64
	updatedAt         int64
}

// NewEntry validates in, applies defaults and creates an Entry stamped with now.
func NewEntry(id, userID string, in EntryInput, now time.Time) (Entry, error) {
	e := Entry{id: id, userID: userID, createdAt: now.UnixMilli()}
	if err := e.apply(in, now); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Update returns a copy with the editable fields replaced by in.
// Identity, owner and creation time are preserved.
func (e *Entry) Update(in EntryInput, now time.Time) (Entry, error) {
	next := Entry{id: e.id, userID: e.userID, createdAt: e.createdAt}
	if err := next.apply(in, now); err != nil {
		return Entry{}, err
	}
	return next, nil
}

func (e *Entry) apply(in EntryInput, now time.Time) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleRunes {
		return domain.NewValidationError("title", "is too long")
	}
	if len(in.Content) > MaxContentSize {
		return domain.NewValidationError("content", "is too large")
	}
	if len(in.Tags) > MaxTags {
		return domain.NewValidationError("tags", "has too many items")
	}

	date := in.Date
	if date == "" {
		date = now.UTC().Format(dateLayout)
	} else if err := validateDate(date); err != nil {
		return err
	}

	e.title = title
	e.content = in.Content
	e.folder = orDefault(in.Folder, DefaultFolder)
	e.mood = orDefault(in.Mood, DefaultMood)
	e.date = date
	e.completedHabitIDs = dedupe(in.CompletedHabitIDs)
	e.tags = normalizeTags(in.Tags)
	e.updatedAt = now.UnixMilli()
	return nil
}

// ReconstructEntry creates an Entry without validation (storage hydration).
func ReconstructEntry(
	id, userID, title, content, folder, mood, date string,
	completedHabitIDs, tags []string, createdAt, updatedAt int64,
) Entry {
	return Entry{
		id: id, userID: userID, title: title, content: content,
		folder: folder, mood: mood, date: date,
		completedHabitIDs: completedHabitIDs, tags: tags,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (e *Entry) ID() string                  { return e.id }
func (e *Entry) UserID() string              { return e.userID }
func (e *Entry) Title() string               { return e.title }
func (e *Entry) Content() string             { return e.content }
func (e *Entry) Folder() string              { return e.folder }
func (e *Entry) Mood() string                { return e.mood }
func (e *Entry) Date() string                { return e.date }
func (e *Entry) CompletedHabitIDs() []string { return e.completedHabitIDs }
func (e *Entry) Tags() []string              { return e.tags }
func (e *Entry) CreatedAt() int64            { return e.createdAt }
func (e *Entry) UpdatedAt() int64            { return e.updatedAt }

// SearchText is the text embedded for semantic search: title and content joined by a space.
func (e *Entry) SearchText() string { return e.title + " " + e.content }

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return domain.NewValidationError("date", "must be YYYY-MM-DD")
	}
	return nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeTags(in []string) []string {
	lowered := make([]string, len(in))
	for i, t := range in {
		lowered[i] = strings.ToLower(t)
	}
	return dedupe(lowered)
}
