package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
)

// ─── Request bodies ─────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

// civilDate is a calendar day encoded as YYYY-MM-DD.
type civilDate struct{ time.Time }

func (d *civilDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Invalid("date", "must be a YYYY-MM-DD string")
	}
	t, err := parseDate("date", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func datePtr(d *civilDate) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type createUserRequest struct {
	Name string `json:"name"`
}

type habitRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Type        domain.HabitType  `json:"type"`
	Frequency   domain.Frequency  `json:"target_frequency"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	BaseXP      int64             `json:"base_xp"`
	StartDate   *civilDate        `json:"start_date"`
	EndDate     *civilDate        `json:"end_date"`
}

type habitPatchRequest struct {
	Name         *string            `json:"name"`
	Description  *string            `json:"description"`
	Category     *string            `json:"category"`
	Type         *domain.HabitType  `json:"type"`
	Frequency    *domain.Frequency  `json:"target_frequency"`
	Difficulty   *domain.Difficulty `json:"difficulty"`
	BaseXP       *int64             `json:"base_xp"`
	IsActive     *bool              `json:"is_active"`
	StartDate    *civilDate         `json:"start_date"`
	EndDate      *civilDate         `json:"end_date"`
	ClearEndDate bool               `json:"clear_end_date"`
}

type logRequest struct {
	HabitID          string            `json:"habit_id"`
	Date             *civilDate        `json:"date"`
	Status           domain.LogStatus  `json:"status"`
	CompletionValue  *float64          `json:"completion_value"`
	TimeCompleted    *domain.ClockTime `json:"time_completed"`
	Mood             *domain.Mood      `json:"mood"`
	DifficultyRating *int              `json:"difficulty_rating"`
	Notes            string            `json:"notes"`
}

// ─── Query parameters ───────────────────────────────────────────────────────

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	return n, nil
}

// queryFloat returns nil when the parameter is absent.
func queryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, domain.Invalid(name, "must be a number")
	}
	return &n, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	return parseDate(name, v)
}

func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, domain.Invalid(name, "must be true or false")
	}
	return b, nil
}
