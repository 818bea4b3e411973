package api

import (
	"net/http"
)

// ─── Reports ────────────────────────────────────────────────────────────────

// yearMonth reads ?year=&month=, defaulting to the current month.
func (s *Server) yearMonth(r *http.Request) (int, int, error) {
	now := s.svc.Clock()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.yearMonth(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	cal, err := s.svc.Reports.Calendar(r.Context(), userID(r), year, month)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Reports.Weekly(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.yearMonth(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := s.svc.Reports.Monthly(r.Context(), userID(r), year, month)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Reports.Overview(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Reports.Today(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	board, err := s.svc.Reports.Leaderboard(r.Context(), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": board})
}
