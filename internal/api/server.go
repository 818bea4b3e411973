// Package api provides the HTTP server for habitforge.
// It exposes the habit, log, badge and report REST API under /api.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/app/report"
	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/health"
	"github.com/habitforge/habitforge/internal/infra/metrics"
	"github.com/habitforge/habitforge/internal/logging"
)

// UserHeader carries the caller's user id.
const UserHeader = "X-User-ID"

// Services are the application services behind the API.
type Services struct {
	Users   *engagement.UserService
	Habits  *engagement.HabitService
	Logs    *engagement.LogService
	Badges  *engagement.BadgeService
	Streaks *engagement.StreakService
	Levels  *engagement.LevelService
	Reports *report.Service
	Clock   engagement.Clock
}

// Server is the habitforge HTTP API server.
type Server struct {
	svc            Services
	checker        *health.Checker
	metricsEnabled bool
	timeout        time.Duration
}

// NewServer creates a new API server.
func NewServer(svc Services) *Server {
	if svc.Clock == nil {
		svc.Clock = time.Now
	}
	return &Server{svc: svc, timeout: 30 * time.Second}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker makes /health report the checker's latest statuses.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// SetTimeout bounds every request. Non-positive values are ignored.
func (s *Server) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(latencyMiddleware)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)

		r.Group(func(r chi.Router) {
			r.Use(userMiddleware)

			r.Get("/users/me", s.handleMe)

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", s.handleListHabits)
				r.Post("/", s.handleCreateHabit)
				r.Get("/{id}", s.handleGetHabit)
				r.Put("/{id}", s.handleUpdateHabit)
				r.Delete("/{id}", s.handleDeleteHabit)
				r.Get("/{id}/streak", s.handleHabitStreak)
				r.Get("/{id}/stats", s.handleHabitStats)
			})

			r.Route("/habit-logs", func(r chi.Router) {
				r.Get("/", s.handleListLogs)
				r.Post("/", s.handleCreateLog)
				r.Get("/{id}", s.handleGetLog)
				r.Put("/{id}", s.handleUpdateLog)
				r.Delete("/{id}", s.handleDeleteLog)
			})

			r.Get("/streaks", s.handleStreaks)
			r.Get("/level", s.handleLevel)

			r.Get("/badges", s.handleListBadges)
			r.Post("/badges/check", s.handleCheckBadges)
			r.Get("/badges/{id}", s.handleGetBadge)
			r.Post("/badges/{id}/claim", s.handleClaimBadge)
			r.Get("/user/badges", s.handleUnlockedBadges)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/calendar", s.handleCalendar)
				r.Get("/weekly", s.handleWeekly)
				r.Get("/monthly", s.handleMonthly)
				r.Get("/overview", s.handleOverview)
				r.Get("/today", s.handleToday)
			})

			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.checker.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.checker.Statuses(),
	})
}

// ─── Responses ──────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg, typ string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    typ,
		},
	})
}

// badRequest marks malformed input that never reached the domain.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// writeErr maps a service error to its HTTP status. Unknown errors are
// logged and reported without detail.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		writeError(w, http.StatusBadRequest, "invalid request: "+br.Error(), "invalid_request")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "validation_error")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request timed out", "timeout")
	default:
		logging.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "internal_error")
	}
}

// decodeJSON reads a request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return badRequest{err}
	}
	return nil
}

// ─── Middleware ─────────────────────────────────────────────────────────────

type ctxKey struct{}

// userMiddleware requires the caller id header.
func userMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(UserHeader)
		if id == "" {
			writeError(w, http.StatusUnauthorized, UserHeader+" header is required", "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// userID returns the caller set by userMiddleware.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func latencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestLatency.
			WithLabelValues(r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+UserHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
