// Package domain holds the habit tracker's core types.
// Types here are pure: no storage, no transport, no clock.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ─── Habit ──────────────────────────────────────────────────────────────────

// HabitType separates habits to build from habits to break.
type HabitType string

const (
	HabitGood HabitType = "good"
	HabitBad  HabitType = "bad"
)

// Frequency is how often a habit is meant to be done.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Difficulty is the user's own estimate of how hard a habit is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// CategoryMorningRoutine is the habit category counted by
// morning_routine_completions badges.
const CategoryMorningRoutine = "morning_routine"

const (
	MinBaseXP     = 5
	MaxBaseXP     = 50
	DefaultBaseXP = 10
)

// Habit is a user-owned habit with its running streak counters.
type Habit struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category,omitempty"`
	Type             HabitType  `json:"type"`
	Frequency        Frequency  `json:"target_frequency"`
	Difficulty       Difficulty `json:"difficulty"`
	BaseXP           int64      `json:"base_xp"`
	IsActive         bool       `json:"is_active"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ActiveOn reports whether the habit is expected to be done on day.
// day must be a calendar day (midnight UTC).
func (h Habit) ActiveOn(day time.Time) bool {
	if !h.IsActive {
		return false
	}
	if !h.StartDate.IsZero() && h.StartDate.After(day) {
		return false
	}
	if h.EndDate != nil && h.EndDate.Before(day) {
		return false
	}
	return true
}

// Validate checks a habit before it is stored.
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return Invalid("name", "is required")
	}
	if len(h.Name) > 255 {
		return Invalid("name", "must be at most 255 characters")
	}
	if len(h.Category) > 100 {
		return Invalid("category", "must be at most 100 characters")
	}
	switch h.Type {
	case HabitGood, HabitBad:
	default:
		return Invalid("type", fmt.Sprintf("unknown habit type %q", h.Type))
	}
	switch h.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return Invalid("target_frequency", fmt.Sprintf("unknown frequency %q", h.Frequency))
	}
	switch h.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return Invalid("difficulty", fmt.Sprintf("unknown difficulty %q", h.Difficulty))
	}
	if h.BaseXP < MinBaseXP || h.BaseXP > MaxBaseXP {
		return Invalid("base_xp", fmt.Sprintf("must be between %d and %d", MinBaseXP, MaxBaseXP))
	}
	if h.StartDate.IsZero() {
		return Invalid("start_date", "is required")
	}
	if h.EndDate != nil && h.EndDate.Before(h.StartDate) {
		return Invalid("end_date", "must not be before start_date")
	}
	return nil
}

// ─── User ───────────────────────────────────────────────────────────────────

// User carries the gamification counters for one account.
// CurrentXP is always below LevelThreshold(Level) once normalized.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	CurrentXP int64     `json:"current_xp"`
	TotalXP   int64     `json:"total_xp"`
	Coins     int64     `json:"coins"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser returns a level 1 user with empty counters.
func NewUser(id, name string, now time.Time) User {
	return User{ID: id, Name: name, Level: 1, CreatedAt: now}
}
