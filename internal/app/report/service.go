package report

import (
	"context"
	"fmt"
	"time"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// weekDays is the length of the weekly report, ending today.
const weekDays = 7

// Service builds reports from the log store.
type Service struct {
	db    *sqlite.DB
	clock engagement.Clock
}

// NewService creates a report service.
func NewService(db *sqlite.DB, clock engagement.Clock) *Service {
	return &Service{db: db, clock: clock}
}

// Calendar returns the month grid for year and month (1..12).
func (s *Service) Calendar(ctx context.Context, userID string, year, month int) (Calendar, error) {
	start, err := monthStart(year, month)
	if err != nil {
		return Calendar{}, err
	}
	habits, logs, err := s.load(ctx, userID, start, engagement.EndOfMonth(start))
	if err != nil {
		return Calendar{}, err
	}
	return BuildCalendar(habits, logs, start), nil
}

// Weekly reports the last seven days ending today.
func (s *Service) Weekly(ctx context.Context, userID string) (Period, error) {
	to := engagement.Day(s.clock())
	from := to.AddDate(0, 0, -(weekDays - 1))
	habits, logs, err := s.load(ctx, userID, from, to)
	if err != nil {
		return Period{}, err
	}
	label := fmt.Sprintf("%s to %s", engagement.DayKey(from), engagement.DayKey(to))
	return BuildPeriod(label, habits, logs, from, to), nil
}

// Monthly reports every day of year and month.
func (s *Service) Monthly(ctx context.Context, userID string, year, month int) (Period, error) {
	start, err := monthStart(year, month)
	if err != nil {
		return Period{}, err
	}
	end := engagement.EndOfMonth(start)
	habits, logs, err := s.load(ctx, userID, start, end)
	if err != nil {
		return Period{}, err
	}
	return BuildPeriod(start.Format("January 2006"), habits, logs, start, end), nil
}

// Overview returns lifetime stats, per-habit performance and moods.
func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	var out Overview
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		habits, err := tx.ListHabits(userID)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		logs, err := tx.ListLogs(userID, sqlite.LogFilter{})
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		unlocked, err := tx.ListUnlocked(userID)
		if err != nil {
			return fmt.Errorf("list unlocked badges: %w", err)
		}
		out = BuildOverview(*u, habits, logs, len(unlocked), engagement.Day(s.clock()))
		return nil
	})
	return out, err
}

// DefaultLeaderboardSize is used when Leaderboard is asked for zero rows.
const DefaultLeaderboardSize = 10

// Leaderboard ranks users by level, XP into the level and badges.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	if limit == 0 {
		limit = DefaultLeaderboardSize
	}
	if limit < 0 || limit > 100 {
		return nil, domain.Invalid("limit", "must be between 1 and 100")
	}
	var out []Standing
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		rows, err := tx.Leaderboard(limit)
		if err != nil {
			return fmt.Errorf("leaderboard: %w", err)
		}
		out = BuildLeaderboard(rows)
		return nil
	})
	return out, err
}

// HabitStats returns the lifetime record of one habit.
func (s *Service) HabitStats(ctx context.Context, userID, habitID string) (HabitStats, error) {
	var out HabitStats
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		h, err := tx.GetHabit(userID, habitID)
		if err != nil {
			return err
		}
		logs, err := tx.ListLogs(userID, sqlite.LogFilter{HabitID: habitID})
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		out = BuildHabitStats(*h, logs)
		return nil
	})
	return out, err
}

// Today returns today's completion count against the habits due today.
func (s *Service) Today(ctx context.Context, userID string) (TodayStats, error) {
	var out TodayStats
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		habits, err := tx.ListHabits(userID)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		logs, err := tx.ListLogs(userID, sqlite.LogFilter{})
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		out = BuildToday(*u, habits, logs, engagement.Day(s.clock()))
		return nil
	})
	return out, err
}

func (s *Service) load(ctx context.Context, userID string, from, to time.Time) ([]domain.Habit, []domain.CompletionLog, error) {
	var (
		habits []domain.Habit
		logs   []domain.CompletionLog
	)
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		var err error
		if habits, err = tx.ListHabits(userID); err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		if logs, err = tx.ListLogs(userID, sqlite.LogFilter{From: from, To: to}); err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		return nil
	})
	return habits, logs, err
}

func monthStart(year, month int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, domain.Invalid("month", "must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return time.Time{}, domain.Invalid("year", "is out of range")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}
