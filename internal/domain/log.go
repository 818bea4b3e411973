package domain

import (
	"fmt"
	"time"
)

// LogStatus is the outcome recorded for a habit on one day.
type LogStatus string

const (
	StatusCompleted LogStatus = "completed"
	StatusMissed    LogStatus = "missed"
	StatusSkipped   LogStatus = "skipped"
	StatusPartial   LogStatus = "partial"
)

// ParseLogStatus validates a status string.
func ParseLogStatus(s string) (LogStatus, error) {
	switch st := LogStatus(s); st {
	case StatusCompleted, StatusMissed, StatusSkipped, StatusPartial:
		return st, nil
	}
	return "", Invalid("status", fmt.Sprintf("unknown status %q", s))
}

// Mood is the optional self-reported mood attached to a log.
type Mood string

const (
	MoodTerrible  Mood = "terrible"
	MoodBad       Mood = "bad"
	MoodNeutral   Mood = "neutral"
	MoodGood      Mood = "good"
	MoodExcellent Mood = "excellent"
)

// Moods lists every mood from worst to best.
var Moods = []Mood{MoodTerrible, MoodBad, MoodNeutral, MoodGood, MoodExcellent}

// Score maps a mood onto 1..5. Unknown moods score as neutral.
func (m Mood) Score() int {
	for i, mood := range Moods {
		if mood == m {
			return i + 1
		}
	}
	return 3
}

// ParseMood validates a mood string.
func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", Invalid("mood", fmt.Sprintf("unknown mood %q", s))
}

// ClockTime is a time of day with minute precision ("HH:MM").
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, Invalid("time_completed", "must be HH:MM")
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// Before reports whether c is strictly earlier than hour:minute.
func (c ClockTime) Before(hour, minute int) bool { return c.Minutes() < hour*60+minute }

// After reports whether c is strictly later than hour:minute.
func (c ClockTime) After(hour, minute int) bool { return c.Minutes() > hour*60+minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CompletionLog records what happened to one habit on one calendar day.
// There is at most one log per (habit, date).
type CompletionLog struct {
	ID               string     `json:"id"`
	HabitID          string     `json:"habit_id"`
	UserID           string     `json:"user_id"`
	Date             time.Time  `json:"date"`
	Status           LogStatus  `json:"status"`
	CompletionValue  float64    `json:"completion_value"`
	XPEarned         int64      `json:"xp_earned"`
	StreakBonus      int64      `json:"streak_bonus"`
	TimeCompleted    *ClockTime `json:"time_completed,omitempty"`
	Mood             *Mood      `json:"mood,omitempty"`
	DifficultyRating *int       `json:"difficulty_rating,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsCompleted reports status=completed regardless of value.
// Badge predicates count these.
func (l CompletionLog) IsCompleted() bool { return l.Status == StatusCompleted }

// IsFullCompletion reports a completion that advances streaks.
func (l CompletionLog) IsFullCompletion() bool {
	return IsFullCompletion(l.Status, l.CompletionValue)
}

// IsFullCompletion reports whether status and value form a full completion.
func IsFullCompletion(status LogStatus, value float64) bool {
	return status == StatusCompleted && value >= 1.0
}

// DefaultCompletionValue is the value assumed when a log omits it.
func DefaultCompletionValue(status LogStatus) float64 {
	if status == StatusCompleted {
		return 1.0
	}
	return 0.0
}

const maxNotesLen = 1000

// Validate checks a log's fields. today bounds the date.
func (l CompletionLog) Validate(today time.Time) error {
	if l.HabitID == "" {
		return Invalid("habit_id", "is required")
	}
	if l.Date.IsZero() {
		return Invalid("date", "is required")
	}
	if l.Date.After(today) {
		return Invalid("date", "must not be in the future")
	}
	if _, err := ParseLogStatus(string(l.Status)); err != nil {
		return err
	}
	if l.CompletionValue < 0 || l.CompletionValue > 1 {
		return Invalid("completion_value", "must be between 0 and 1")
	}
	if l.Mood != nil {
		if _, err := ParseMood(string(*l.Mood)); err != nil {
			return err
		}
	}
	if l.DifficultyRating != nil && (*l.DifficultyRating < 1 || *l.DifficultyRating > 5) {
		return Invalid("difficulty_rating", "must be between 1 and 5")
	}
	if len(l.Notes) > maxNotesLen {
		return Invalid("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
	}
	return nil
}
