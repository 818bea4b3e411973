// Package engagement implements the gamification engine: streaks, the XP and
// level ledger, and badge evaluation. The calculators are pure functions over
// an already-loaded history; the *Service types load that history from
// SQLite, run the calculators and write the results back in one transaction.
package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// StreakRun is one maximal block of consecutive days.
type StreakRun struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length int       `json:"days"`
}

// StreakSummary is the derived streak state of one scope.
// Longest >= Current always holds.
type StreakSummary struct {
	Current int         `json:"current_streak"`
	Longest int         `json:"longest_streak"`
	Runs    []StreakRun `json:"streak_breakdown"`
}

// CalculateStreaks derives runs of consecutive days from completion dates.
// The run ending at the latest date is only "current" while that date is
// today or yesterday; after that the streak counts as broken.
func CalculateStreaks(dates []time.Time, today time.Time) StreakSummary {
	days := uniqueSortedDays(dates)
	summary := StreakSummary{Runs: []StreakRun{}}
	if len(days) == 0 {
		return summary
	}

	run := StreakRun{Start: days[0], End: days[0], Length: 1}
	for _, d := range days[1:] {
		if DaysBetween(run.End, d) == 1 {
			run.End = d
			run.Length++
			continue
		}
		summary.Runs = append(summary.Runs, run)
		summary.Longest = max(summary.Longest, run.Length)
		run = StreakRun{Start: d, End: d, Length: 1}
	}
	summary.Runs = append(summary.Runs, run)
	summary.Longest = max(summary.Longest, run.Length)

	if gap := DaysBetween(run.End, today); gap == 0 || gap == 1 {
		summary.Current = run.Length
	}
	return summary
}

// FullCompletionDates extracts the dates that advance streaks.
func FullCompletionDates(logs []domain.CompletionLog) []time.Time {
	dates := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		if l.IsFullCompletion() {
			dates = append(dates, l.Date)
		}
	}
	return dates
}

// StreakBonus is the extra XP for a full completion, stepped on the habit's
// streak before that completion.
func StreakBonus(streakBefore int) int64 {
	switch {
	case streakBefore >= 30:
		return 20
	case streakBefore >= 14:
		return 15
	case streakBefore >= 7:
		return 10
	case streakBefore >= 3:
		return 5
	default:
		return 0
	}
}

// ApplyStreak updates a habit's counters for a newly recorded outcome.
// A full completion extends the streak; anything else resets it.
func ApplyStreak(h *domain.Habit, status domain.LogStatus, value float64) {
	if !domain.IsFullCompletion(status, value) {
		h.CurrentStreak = 0
		return
	}
	h.CurrentStreak++
	h.TotalCompletions++
	if h.CurrentStreak > h.LongestStreak {
		h.LongestStreak = h.CurrentStreak
	}
}

// ─── Service ────────────────────────────────────────────────────────────────

// Clock returns the current instant in the user's timezone.
type Clock func() time.Time

// UserStreak is the "any habit" streak plus activity totals.
type UserStreak struct {
	StreakSummary
	TotalCompleted int `json:"total_completed"`
	ActiveDays     int `json:"active_days"`
}

// HabitStreak pairs the stored counters with the derived history.
type HabitStreak struct {
	HabitID string `json:"habit_id"`
	StreakSummary
	StoredCurrent int `json:"stored_current_streak"`
	StoredLongest int `json:"stored_longest_streak"`
}

// StreakService answers streak queries from the log store.
type StreakService struct {
	db    *sqlite.DB
	clock Clock
}

// NewStreakService creates a streak service.
func NewStreakService(db *sqlite.DB, clock Clock) *StreakService {
	return &StreakService{db: db, clock: clock}
}

// ForUser computes the streak across all of a user's active habits.
func (s *StreakService) ForUser(ctx context.Context, userID string) (UserStreak, error) {
	var out UserStreak
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		habits, err := tx.ListHabits(userID)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		active := make(map[string]bool, len(habits))
		for _, h := range habits {
			active[h.ID] = h.IsActive
		}
		logs, err := tx.ListLogs(userID, sqlite.LogFilter{})
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}

		var full []domain.CompletionLog
		for _, l := range logs {
			if active[l.HabitID] && l.IsFullCompletion() {
				full = append(full, l)
			}
		}
		dates := FullCompletionDates(full)
		out.StreakSummary = CalculateStreaks(dates, Day(s.clock()))
		out.TotalCompleted = len(full)
		out.ActiveDays = len(uniqueSortedDays(dates))
		return nil
	})
	return out, err
}

// ForHabit computes the streak history of one habit.
func (s *StreakService) ForHabit(ctx context.Context, userID, habitID string) (HabitStreak, error) {
	out := HabitStreak{HabitID: habitID}
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		h, err := tx.GetHabit(userID, habitID)
		if err != nil {
			return err
		}
		logs, err := tx.ListLogs(userID, sqlite.LogFilter{HabitID: habitID})
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		out.StreakSummary = CalculateStreaks(FullCompletionDates(logs), Day(s.clock()))
		out.StoredCurrent = h.CurrentStreak
		out.StoredLongest = h.LongestStreak
		return nil
	})
	return out, err
}
