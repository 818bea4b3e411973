package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitforge/habitforge/internal/app/engagement"
)

// ─── Badges ─────────────────────────────────────────────────────────────────

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.svc.Badges.List(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

func (s *Server) handleGetBadge(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Badges.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUnlockedBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.svc.Badges.Unlocked(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

func (s *Server) handleCheckBadges(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Badges.Check(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleClaimBadge answers a rejected claim with 400 and the outcome code
// as the error type.
func (s *Server) handleClaimBadge(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Badges.Claim(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if res.Outcome != engagement.ClaimGranted {
		writeError(w, http.StatusBadRequest, res.Outcome.Err().Error(), string(res.Outcome))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
