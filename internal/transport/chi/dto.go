package chi

import (
	"time"

	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domuser.User) userResponse {
	return userResponse{
		ID:        u.ID(),
		Email:     u.Email(),
		Name:      u.Name(),
		Picture:   u.Picture(),
		CreatedAt: time.UnixMilli(u.CreatedAt()).UTC(),
	}
}

type entryRequest struct {
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	Folder            string   `json:"folder"`
	Mood              string   `json:"mood"`
	Date              string   `json:"date"`
	CompletedHabitIDs []string `json:"completed_habit_ids"`
	Tags              []string `json:"tags"`
}

func (e entryRequest) input() domjournal.EntryInput {
	return domjournal.EntryInput{
		Title:             e.Title,
		Content:           e.Content,
		Folder:            e.Folder,
		Mood:              e.Mood,
		Date:              e.Date,
		CompletedHabitIDs: e.CompletedHabitIDs,
		Tags:              e.Tags,
	}
}

type entryResponse struct {
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

func toEntryResponse(e *domjournal.Entry) entryResponse {
	return entryResponse{
		ID:                e.ID(),
		Title:             e.Title(),
		Content:           e.Content(),
		Folder:            e.Folder(),
		Mood:              e.Mood(),
		Date:              e.Date(),
		CompletedHabitIDs: nonNil(e.CompletedHabitIDs()),
		Tags:              nonNil(e.Tags()),
		CreatedAt:         time.UnixMilli(e.CreatedAt()).UTC(),
		UpdatedAt:         time.UnixMilli(e.UpdatedAt()).UTC(),
	}
}

type habitRequest struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	IsActive *bool  `json:"is_active"`
}

func (h habitRequest) input() domjournal.HabitInput {
	return domjournal.HabitInput{Name: h.Name, Icon: h.Icon, IsActive: h.IsActive}
}

type habitResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"is_active"`
}

func toHabitResponse(h *domjournal.Habit) habitResponse {
	return habitResponse{ID: h.ID(), Name: h.Name(), Icon: h.Icon(), IsActive: h.IsActive()}
}

type reminderRequest struct {
	Text      string `json:"text"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

func (r reminderRequest) input() domjournal.ReminderInput {
	return domjournal.ReminderInput{Text: r.Text, Date: r.Date, Completed: r.Completed}
}

type reminderResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

func toReminderResponse(r *domjournal.Reminder) reminderResponse {
	return reminderResponse{ID: r.ID(), Text: r.Text(), Date: r.Date(), Completed: r.Completed()}
}

type taskRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Color     string `json:"color"`
}

func (t taskRequest) input() domjournal.TaskInput {
	return domjournal.TaskInput{Text: t.Text, Completed: t.Completed, Color: t.Color}
}

type taskResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toTaskResponse(t *domjournal.Task) taskResponse {
	return taskResponse{
		ID:        t.ID(),
		Text:      t.Text(),
		Completed: t.Completed(),
		Color:     string(t.Color()),
		CreatedAt: time.UnixMilli(t.CreatedAt()).UTC(),
	}
}

type usageResponse struct {
	Period          string `json:"period"`
	Provider        string `json:"provider,omitempty"`
	PeriodStart     int64  `json:"period_start"`
	PeriodEnd       int64  `json:"period_end"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
	ResetsAt        int64  `json:"resets_at"`
}

func toUsageResponse(r *domusage.Report) usageResponse {
	return usageResponse{
		Period:          string(r.Period()),
		Provider:        r.Provider(),
		PeriodStart:     r.PeriodStart(),
		PeriodEnd:       r.PeriodEnd(),
		TokensUsed:      r.TokensUsed(),
		TokensLimit:     r.TokensLimit(),
		TokensRemaining: r.TokensRemaining(),
		IsExhausted:     r.IsExhausted(),
		ResetsAt:        r.ResetsAt(),
	}
}

// mapSlice converts domain records into response DTOs, never returning nil.
func mapSlice[T, R any](items []T, conv func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = conv(&items[i])
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
