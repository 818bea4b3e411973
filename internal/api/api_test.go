package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/app/report"
	"github.com/habitforge/habitforge/internal/health"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

var fixedNow = time.Date(2025, 7, 16, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := engagement.SeedCatalogue(context.Background(), db, engagement.DefaultBadges()); err != nil {
		t.Fatalf("seed catalogue: %v", err)
	}

	srv := NewServer(Services{
		Users:   engagement.NewUserService(db, fixedClock),
		Habits:  engagement.NewHabitService(db, fixedClock),
		Logs:    engagement.NewLogService(db, fixedClock),
		Badges:  engagement.NewBadgeService(db, fixedClock),
		Streaks: engagement.NewStreakService(db, fixedClock),
		Levels:  engagement.NewLevelService(db),
		Reports: report.NewService(db, fixedClock),
		Clock:   fixedClock,
	})
	return srv, db
}

// do sends one request through the router.
func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Type
}

// seedUser creates a user and one habit and returns their ids.
func seedUser(t *testing.T, h http.Handler) (userID, habitID string) {
	t.Helper()
	w := do(t, h, "POST", "/api/users", "", `{"name":"Ada"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d, body: %s", w.Code, w.Body.String())
	}
	var u struct {
		ID string `json:"id"`
	}
	decode(t, w, &u)

	w = do(t, h, "POST", "/api/habits", u.ID, `{"name":"Read","base_xp":10,"start_date":"2025-07-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create habit: status = %d, body: %s", w.Code, w.Body.String())
	}
	var hb struct {
		ID string `json:"id"`
	}
	decode(t, w, &hb)
	return u.ID, hb.ID
}

// ─── Health & Middleware ────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestAPI_Health_WithChecker(t *testing.T) {
	srv, db := newTestServer(t)
	c := health.NewChecker(db, t.TempDir(), nil)
	c.RunOnce(context.Background())
	srv.SetHealthChecker(c)

	w := do(t, srv.Handler(), "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var body struct {
		Checks []health.Status `json:"checks"`
	}
	decode(t, w, &body)
	if len(body.Checks) != 4 {
		t.Errorf("checks = %d, want 4", len(body.Checks))
	}
}

func TestAPI_MissingUserHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), "GET", "/api/habits", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPI_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), "GET", "/api/users/me", "nobody", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if typ := errorType(t, w); typ != "not_found" {
		t.Errorf("type = %q, want not_found", typ)
	}
}

func TestAPI_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), "OPTIONS", "/api/habit-logs", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, UserHeader) {
		t.Errorf("allow headers = %q, missing %s", got, UserHeader)
	}
}

func TestAPI_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	if w := do(t, srv.Handler(), "GET", "/metrics", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("metrics disabled: status = %d, want 404", w.Code)
	}

	srv.EnableMetrics()
	w := do(t, srv.Handler(), "GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics enabled: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "habitforge_") {
		t.Error("metrics output should contain habitforge_ series")
	}
}

// ─── Users & Habits ─────────────────────────────────────────────────────────

func TestAPI_CreateUser_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), "POST", "/api/users", "", `{"name":"  "}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestAPI_Me(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, _ := seedUser(t, h)

	w := do(t, h, "GET", "/api/users/me", user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var body struct {
		User struct {
			Level int `json:"level"`
		} `json:"user"`
		Level struct {
			Threshold int64 `json:"threshold"`
		} `json:"level"`
	}
	decode(t, w, &body)
	if body.User.Level != 1 || body.Level.Threshold != 100 {
		t.Errorf("unexpected me response: %+v", body)
	}
}

func TestAPI_HabitCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	w := do(t, h, "GET", "/api/habits/"+habit, user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var got struct {
		Type       string `json:"type"`
		Difficulty string `json:"difficulty"`
		StartDate  string `json:"start_date"`
	}
	decode(t, w, &got)
	if got.Type != "good" || got.Difficulty != "medium" {
		t.Errorf("defaults not applied: %+v", got)
	}

	w = do(t, h, "PUT", "/api/habits/"+habit, user, `{"name":"Read more","base_xp":20}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body: %s", w.Code, w.Body.String())
	}

	w = do(t, h, "PUT", "/api/habits/"+habit, user, `{"base_xp":99}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid base_xp: status = %d, want 422", w.Code)
	}

	w = do(t, h, "GET", "/api/habits?active=true", user, "")
	var list struct {
		Habits []struct {
			Name   string `json:"name"`
			BaseXP int64  `json:"base_xp"`
		} `json:"habits"`
	}
	decode(t, w, &list)
	if len(list.Habits) != 1 || list.Habits[0].Name != "Read more" || list.Habits[0].BaseXP != 20 {
		t.Errorf("unexpected list: %+v", list.Habits)
	}

	if w := do(t, h, "GET", "/api/habits/"+habit, "someone-else", ""); w.Code != http.StatusNotFound {
		t.Errorf("other user's habit: status = %d, want 404", w.Code)
	}

	if w := do(t, h, "DELETE", "/api/habits/"+habit, user, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", w.Code)
	}
	if w := do(t, h, "GET", "/api/habits/"+habit, user, ""); w.Code != http.StatusNotFound {
		t.Errorf("after delete: status = %d, want 404", w.Code)
	}
}

func TestAPI_ListHabits_Filters(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, _ := seedUser(t, h)

	body := `{"name":"Smoking","type":"bad","difficulty":"hard","category":"health","start_date":"2025-07-01"}`
	if w := do(t, h, "POST", "/api/habits", user, body); w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body: %s", w.Code, w.Body.String())
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"type=bad", 1},
		{"type=good", 1},
		{"difficulty=hard", 1},
		{"category=health", 1},
		{"category=learning", 0},
		{"type=bad&difficulty=easy", 0},
	}
	for _, tt := range tests {
		w := do(t, h, "GET", "/api/habits?"+tt.query, user, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, w.Code)
		}
		var list struct {
			Habits []json.RawMessage `json:"habits"`
		}
		decode(t, w, &list)
		if len(list.Habits) != tt.want {
			t.Errorf("%q: got %d habits, want %d", tt.query, len(list.Habits), tt.want)
		}
	}

	if w := do(t, h, "GET", "/api/habits?difficulty=extreme", user, ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("difficulty=extreme: status = %d, want 422", w.Code)
	}
}

func TestAPI_CreateHabit_BadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, _ := seedUser(t, h)

	w := do(t, h, "POST", "/api/habits", user, `{"name":"Walk","start_date":"16/07/2025"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

// ─── Habit logs ─────────────────────────────────────────────────────────────

func TestAPI_LogLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	body := `{"habit_id":"` + habit + `","date":"2025-07-16","status":"completed","mood":"good","time_completed":"07:15"}`
	w := do(t, h, "POST", "/api/habit-logs", user, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body: %s", w.Code, w.Body.String())
	}
	var created struct {
		Log struct {
			ID       string `json:"id"`
			XPEarned int64  `json:"xp_earned"`
		} `json:"log"`
		Ledger struct {
			XPDelta int64 `json:"xp_delta"`
		} `json:"ledger"`
		Awarded []struct {
			Badge struct {
				ID string `json:"id"`
			} `json:"badge"`
		} `json:"badges_awarded"`
	}
	decode(t, w, &created)
	if created.Log.XPEarned != 10 {
		t.Errorf("xp_earned = %d, want 10", created.Log.XPEarned)
	}
	found := false
	for _, a := range created.Awarded {
		if a.Badge.ID == "first-steps" {
			found = true
		}
	}
	if !found {
		t.Errorf("first-steps should be awarded, got %+v", created.Awarded)
	}

	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", w.Code)
	}

	w = do(t, h, "GET", "/api/habit-logs?from=2025-07-01&to=2025-07-31&status=completed", user, "")
	var list struct {
		Logs []json.RawMessage `json:"logs"`
	}
	decode(t, w, &list)
	if len(list.Logs) != 1 {
		t.Errorf("logs = %d, want 1", len(list.Logs))
	}

	w = do(t, h, "PUT", "/api/habit-logs/"+created.Log.ID, user, `{"status":"partial","completion_value":0.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body: %s", w.Code, w.Body.String())
	}
	var updated struct {
		Log struct {
			XPEarned int64 `json:"xp_earned"`
		} `json:"log"`
	}
	decode(t, w, &updated)
	if updated.Log.XPEarned != 5 {
		t.Errorf("xp after update = %d, want 5", updated.Log.XPEarned)
	}

	w = do(t, h, "PUT", "/api/habit-logs/"+created.Log.ID, user, `{"clear_mood":true,"clear_time_completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("clear: status = %d, body: %s", w.Code, w.Body.String())
	}
	var cleared struct {
		Log map[string]interface{} `json:"log"`
	}
	decode(t, w, &cleared)
	if _, ok := cleared.Log["mood"]; ok {
		t.Errorf("mood should be cleared, got %v", cleared.Log["mood"])
	}
	if _, ok := cleared.Log["time_completed"]; ok {
		t.Errorf("time_completed should be cleared, got %v", cleared.Log["time_completed"])
	}

	if w := do(t, h, "DELETE", "/api/habit-logs/"+created.Log.ID, user, ""); w.Code != http.StatusOK {
		t.Errorf("delete: status = %d", w.Code)
	}
	if w := do(t, h, "GET", "/api/habit-logs/"+created.Log.ID, user, ""); w.Code != http.StatusNotFound {
		t.Errorf("after delete: status = %d, want 404", w.Code)
	}
}

func TestAPI_CreateLog_Rejections(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"future date", `{"habit_id":"` + habit + `","date":"2025-07-17","status":"completed"}`, http.StatusUnprocessableEntity},
		{"bad status", `{"habit_id":"` + habit + `","date":"2025-07-16","status":"done"}`, http.StatusUnprocessableEntity},
		{"value out of range", `{"habit_id":"` + habit + `","date":"2025-07-16","status":"partial","completion_value":1.5}`, http.StatusUnprocessableEntity},
		{"missing date", `{"habit_id":"` + habit + `","status":"completed"}`, http.StatusUnprocessableEntity},
		{"unknown habit", `{"habit_id":"nope","date":"2025-07-16","status":"completed"}`, http.StatusNotFound},
		{"malformed json", `{"habit_id":`, http.StatusBadRequest},
		{"unknown field", `{"habit":"x"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/api/habit-logs", user, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAPI_ListLogs_BadQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, _ := seedUser(t, h)

	for _, q := range []string{
		"from=yesterday", "limit=abc", "limit=-1", "status=done",
		"mood=ecstatic", "habit_type=neutral", "min_completion=abc", "min_completion=1.5",
	} {
		if w := do(t, h, "GET", "/api/habit-logs?"+q, user, ""); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", q, w.Code)
		}
	}
}

func TestAPI_ListLogs_Filters(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	body := `{"habit_id":"` + habit + `","date":"2025-07-15","status":"partial","completion_value":0.5,"mood":"bad"}`
	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
		t.Fatalf("log: status = %d, body: %s", w.Code, w.Body.String())
	}
	body = `{"habit_id":"` + habit + `","date":"2025-07-16","status":"completed","mood":"good"}`
	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
		t.Fatalf("log: status = %d, body: %s", w.Code, w.Body.String())
	}

	tests := []struct {
		query string
		want  int
	}{
		{"mood=good", 1},
		{"mood=bad", 1},
		{"mood=neutral", 0},
		{"habit_type=good", 2},
		{"habit_type=bad", 0},
		{"min_completion=0.5", 2},
		{"min_completion=0.75", 1},
		{"category=fitness", 0},
	}
	for _, tt := range tests {
		w := do(t, h, "GET", "/api/habit-logs?"+tt.query, user, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d, body: %s", tt.query, w.Code, w.Body.String())
		}
		var list struct {
			Logs []json.RawMessage `json:"logs"`
		}
		decode(t, w, &list)
		if len(list.Logs) != tt.want {
			t.Errorf("%q: got %d logs, want %d", tt.query, len(list.Logs), tt.want)
		}
	}
}

// ─── Streaks, Level & Badges ────────────────────────────────────────────────

func TestAPI_StreaksAndLevel(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	for _, d := range []string{"2025-07-15", "2025-07-16"} {
		body := `{"habit_id":"` + habit + `","date":"` + d + `","status":"completed"}`
		if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
			t.Fatalf("log %s: status = %d, body: %s", d, w.Code, w.Body.String())
		}
	}

	w := do(t, h, "GET", "/api/streaks", user, "")
	var st struct {
		Current int `json:"current_streak"`
		Longest int `json:"longest_streak"`
	}
	decode(t, w, &st)
	if st.Current != 2 || st.Longest != 2 {
		t.Errorf("streak = %d/%d, want 2/2", st.Current, st.Longest)
	}

	w = do(t, h, "GET", "/api/habits/"+habit+"/streak", user, "")
	var hs struct {
		StoredCurrent int `json:"stored_current_streak"`
	}
	decode(t, w, &hs)
	if hs.StoredCurrent != 2 {
		t.Errorf("stored streak = %d, want 2", hs.StoredCurrent)
	}

	w = do(t, h, "GET", "/api/level", user, "")
	if w.Code != http.StatusOK {
		t.Errorf("level: status = %d", w.Code)
	}
}

func TestAPI_Badges(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	w := do(t, h, "GET", "/api/badges", user, "")
	var list struct {
		Badges []struct {
			ID       string `json:"id"`
			Unlocked bool   `json:"unlocked"`
			Progress *int   `json:"progress"`
		} `json:"badges"`
	}
	decode(t, w, &list)
	if len(list.Badges) != len(engagement.DefaultBadges()) {
		t.Fatalf("badges = %d, want %d", len(list.Badges), len(engagement.DefaultBadges()))
	}

	w = do(t, h, "GET", "/api/badges/phoenix", user, "")
	var phoenix struct {
		Progress *int `json:"progress"`
	}
	decode(t, w, &phoenix)
	if phoenix.Progress != nil {
		t.Errorf("phoenix progress = %v, want null", *phoenix.Progress)
	}

	if w := do(t, h, "GET", "/api/badges/no-such-badge", user, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown badge: status = %d, want 404", w.Code)
	}

	body := `{"habit_id":"` + habit + `","date":"2025-07-16","status":"completed"}`
	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
		t.Fatalf("log: status = %d", w.Code)
	}

	w = do(t, h, "GET", "/api/user/badges", user, "")
	var unlocked struct {
		Badges []struct {
			ID string `json:"id"`
		} `json:"badges"`
	}
	decode(t, w, &unlocked)
	if len(unlocked.Badges) == 0 {
		t.Error("expected unlocked badges after first completion")
	}

	if w := do(t, h, "POST", "/api/badges/check", user, ""); w.Code != http.StatusOK {
		t.Errorf("check: status = %d", w.Code)
	}
}

func TestAPI_ClaimOutcomes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	body := `{"habit_id":"` + habit + `","date":"2025-07-16","status":"completed"}`
	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
		t.Fatalf("log: status = %d", w.Code)
	}

	tests := []struct {
		badge    string
		wantCode int
		wantType string
	}{
		{"first-steps", http.StatusBadRequest, "already_unlocked"},
		{"veteran", http.StatusBadRequest, "requirement_not_met"},
		{"phoenix", http.StatusBadRequest, "unsupported"},
		{"no-such-badge", http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.badge, func(t *testing.T) {
			w := do(t, h, "POST", "/api/badges/"+tt.badge+"/claim", user, "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if typ := errorType(t, w); typ != tt.wantType {
				t.Errorf("type = %q, want %q", typ, tt.wantType)
			}
		})
	}
}

// ─── Reports ────────────────────────────────────────────────────────────────

func TestAPI_Reports(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)

	body := `{"habit_id":"` + habit + `","date":"2025-07-16","status":"completed","mood":"excellent"}`
	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
		t.Fatalf("log: status = %d", w.Code)
	}

	w := do(t, h, "GET", "/api/reports/calendar", user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("calendar: status = %d, body: %s", w.Code, w.Body.String())
	}
	var cal struct {
		Month string `json:"month"`
		Days  []struct {
			Date        string `json:"date"`
			MoodSummary *int   `json:"mood_summary"`
		} `json:"calendar_data"`
	}
	decode(t, w, &cal)
	if cal.Month != "July 2025" || len(cal.Days) != 31 {
		t.Fatalf("calendar = %q with %d days", cal.Month, len(cal.Days))
	}
	if d := cal.Days[15]; d.Date != "2025-07-16" || d.MoodSummary == nil || *d.MoodSummary != 5 {
		t.Errorf("unexpected cell for 2025-07-16: %+v", d)
	}

	for _, path := range []string{"/api/reports/weekly", "/api/reports/monthly?year=2025&month=6", "/api/reports/overview"} {
		if w := do(t, h, "GET", path, user, ""); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}

	if w := do(t, h, "GET", "/api/reports/monthly?month=13", user, ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("month=13: status = %d, want 422", w.Code)
	}
}

func TestAPI_QuickStats(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	user, habit := seedUser(t, h)
	if w := do(t, h, "POST", "/api/users", "", `{"name":"Bob"}`); w.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d", w.Code)
	}

	body := `{"habit_id":"` + habit + `","date":"2025-07-16","status":"completed"}`
	if w := do(t, h, "POST", "/api/habit-logs", user, body); w.Code != http.StatusCreated {
		t.Fatalf("log: status = %d", w.Code)
	}

	w := do(t, h, "GET", "/api/reports/today", user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("today: status = %d, body: %s", w.Code, w.Body.String())
	}
	var today struct {
		Date           string `json:"date"`
		Total          int    `json:"total_habits"`
		Completed      int    `json:"completed_habits"`
		CompletionRate int    `json:"completion_rate"`
		CurrentStreak  int    `json:"current_streak"`
	}
	decode(t, w, &today)
	if today.Date != "2025-07-16" || today.Total != 1 || today.Completed != 1 || today.CompletionRate != 100 || today.CurrentStreak != 1 {
		t.Errorf("unexpected today stats: %+v", today)
	}

	w = do(t, h, "GET", "/api/habits/"+habit+"/stats", user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("habit stats: status = %d, body: %s", w.Code, w.Body.String())
	}
	var stats struct {
		TotalLogs   int               `json:"total_logs"`
		SuccessRate int               `json:"success_rate"`
		RecentLogs  []json.RawMessage `json:"recent_logs"`
	}
	decode(t, w, &stats)
	if stats.TotalLogs != 1 || stats.SuccessRate != 100 || len(stats.RecentLogs) != 1 {
		t.Errorf("unexpected habit stats: %+v", stats)
	}
	if w := do(t, h, "GET", "/api/habits/"+habit+"/stats", "someone-else", ""); w.Code != http.StatusNotFound {
		t.Errorf("other user's habit stats: status = %d, want 404", w.Code)
	}

	w = do(t, h, "GET", "/api/leaderboard", user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard: status = %d, body: %s", w.Code, w.Body.String())
	}
	var board struct {
		Leaderboard []struct {
			Rank   int    `json:"rank"`
			UserID string `json:"user_id"`
			Badges int    `json:"badges"`
		} `json:"leaderboard"`
	}
	decode(t, w, &board)
	if len(board.Leaderboard) != 2 || board.Leaderboard[0].UserID != user || board.Leaderboard[0].Badges == 0 {
		t.Errorf("unexpected leaderboard: %+v", board.Leaderboard)
	}
	if w := do(t, h, "GET", "/api/leaderboard?limit=0", user, ""); w.Code != http.StatusOK {
		t.Errorf("limit=0: status = %d, want 200", w.Code)
	}
	if w := do(t, h, "GET", "/api/leaderboard?limit=500", user, ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("limit=500: status = %d, want 422", w.Code)
	}
}
