package chi

import (
	"context"
	"net/http"
)

var deletedResponse = map[string]bool{"ok": true}

// ListEntries handles GET /entries/?limit=N.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if !queryParam(w, r, "limit", &limit) {
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	list, err := s.journal.ListEntries(r.Context(), currentUserID(r), n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toEntryResponse))
}

// CreateEntry handles POST /entries/.
func (s *Server) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.journal.CreateEntry(r.Context(), currentUserID(r), req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(&e))
}

// GetEntry handles GET /entries/{id}.
func (s *Server) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	e, err := s.journal.GetEntry(r.Context(), currentUserID(r), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(&e))
}

// UpdateEntry handles PUT /entries/{id}.
func (s *Server) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req entryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.journal.UpdateEntry(r.Context(), currentUserID(r), id, req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(&e))
}

// DeleteEntry handles DELETE /entries/{id}.
func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.journal.DeleteEntry)
}

// ListHabits handles GET /habits/.
func (s *Server) ListHabits(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListHabits(r.Context(), currentUserID(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toHabitResponse))
}

// CreateHabit handles POST /habits/.
func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h, err := s.journal.CreateHabit(r.Context(), currentUserID(r), req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHabitResponse(&h))
}

// UpdateHabit handles PUT /habits/{id}.
func (s *Server) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req habitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h, err := s.journal.UpdateHabit(r.Context(), currentUserID(r), id, req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitResponse(&h))
}

// DeleteHabit handles DELETE /habits/{id}.
func (s *Server) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.journal.DeleteHabit)
}

// ListReminders handles GET /reminders/.
func (s *Server) ListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListReminders(r.Context(), currentUserID(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toReminderResponse))
}

// CreateReminder handles POST /reminders/.
func (s *Server) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rem, err := s.journal.CreateReminder(r.Context(), currentUserID(r), req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReminderResponse(&rem))
}

// UpdateReminder handles PUT /reminders/{id}.
func (s *Server) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req reminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rem, err := s.journal.UpdateReminder(r.Context(), currentUserID(r), id, req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReminderResponse(&rem))
}

// DeleteReminder handles DELETE /reminders/{id}.
func (s *Server) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.journal.DeleteReminder)
}

// ListTasks handles GET /tasks/.
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListTasks(r.Context(), currentUserID(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toTaskResponse))
}

// CreateTask handles POST /tasks/.
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.journal.CreateTask(r.Context(), currentUserID(r), req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(&t))
}

// UpdateTask handles PUT /tasks/{id}.
func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req taskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.journal.UpdateTask(r.Context(), currentUserID(r), id, req.input())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(&t))
}

// DeleteTask handles DELETE /tasks/{id}.
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.journal.DeleteTask)
}

// deleteRecord answers {"ok": true} whether or not the record existed.
func (s *Server) deleteRecord(
	w http.ResponseWriter,
	r *http.Request,
	del func(ctx context.Context, userID, id string) error,
) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	if err := del(r.Context(), currentUserID(r), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse)
}
