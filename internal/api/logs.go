package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// ─── Habit logs ─────────────────────────────────────────────────────────────
// Mutations return the log together with the ledger entry, any badges
// awarded and the user's updated counters.

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	f, err := logFilter(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	logs, err := s.svc.Logs.List(r.Context(), userID(r), f)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

func logFilter(r *http.Request) (sqlite.LogFilter, error) {
	q := r.URL.Query()
	f := sqlite.LogFilter{
		HabitID:   q.Get("habit_id"),
		HabitType: domain.HabitType(q.Get("habit_type")),
		Category:  q.Get("category"),
		Mood:      domain.Mood(q.Get("mood")),
	}
	var err error
	if f.From, err = queryDate(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		return f, err
	}
	if v := q.Get("status"); v != "" {
		if f.Status, err = domain.ParseLogStatus(v); err != nil {
			return f, err
		}
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return f, err
	}
	if f.MinCompletion, err = queryFloat(r, "min_completion"); err != nil {
		return f, err
	}
	return f, f.Validate()
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	in := engagement.LogInput{
		HabitID:          req.HabitID,
		Status:           req.Status,
		CompletionValue:  req.CompletionValue,
		TimeCompleted:    req.TimeCompleted,
		Mood:             req.Mood,
		DifficultyRating: req.DifficultyRating,
		Notes:            req.Notes,
	}
	if req.Date != nil {
		in.Date = req.Date.Time
	}
	res, err := s.svc.Logs.Submit(r.Context(), userID(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.Logs.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	var p engagement.LogPatch
	if err := decodeJSON(r, &p); err != nil {
		writeErr(w, r, err)
		return
	}
	res, err := s.svc.Logs.Update(r.Context(), userID(r), chi.URLParam(r, "id"), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Logs.Delete(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
