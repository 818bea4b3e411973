package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/domain"
)

// ─── Users ──────────────────────────────────────────────────────────────────

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	u, err := s.svc.Users.Create(r.Context(), req.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  u,
		"level": engagement.ProgressFor(*u),
	})
}

// ─── Habits ─────────────────────────────────────────────────────────────────

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "active")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	q := r.URL.Query()
	f := engagement.HabitFilter{
		ActiveOnly: activeOnly,
		Category:   q.Get("category"),
		Type:       domain.HabitType(q.Get("type")),
		Difficulty: domain.Difficulty(q.Get("difficulty")),
	}
	habits, err := s.svc.Habits.List(r.Context(), userID(r), f)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"habits": habits})
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	in := engagement.HabitInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Frequency:   req.Frequency,
		Difficulty:  req.Difficulty,
		BaseXP:      req.BaseXP,
		EndDate:     datePtr(req.EndDate),
	}
	if req.StartDate != nil {
		in.StartDate = req.StartDate.Time
	}
	h, err := s.svc.Habits.Create(r.Context(), userID(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.Habits.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	h, err := s.svc.Habits.Update(r.Context(), userID(r), chi.URLParam(r, "id"), engagement.HabitPatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Frequency:   req.Frequency,
		Difficulty:  req.Difficulty,
		BaseXP:      req.BaseXP,
		IsActive:    req.IsActive,
		StartDate:   datePtr(req.StartDate),
		EndDate:     datePtr(req.EndDate),
		ClearEnd:    req.ClearEndDate,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Habits.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHabitStreak(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Streaks.ForHabit(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHabitStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Reports.HabitStats(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ─── Streaks & Level ────────────────────────────────────────────────────────

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Streaks.ForUser(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Levels.Progress(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
