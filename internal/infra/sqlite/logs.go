package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
)

// ─── Habit Log Repository ───────────────────────────────────────────────────

const logColumns = `id, habit_id, user_id, date, status, completion_value, xp_earned, streak_bonus,
	time_completed, mood, difficulty_rating, notes, created_at, updated_at`

// LogFilter narrows ListLogs. Zero fields do not filter.
type LogFilter struct {
	HabitID string
	From    time.Time // inclusive
	To      time.Time // inclusive
	Status  domain.LogStatus
	Limit   int

	// Habit attributes, matched through the habits table.
	HabitType domain.HabitType
	Category  string

	Mood          domain.Mood
	MinCompletion *float64
}

// Validate rejects unknown enum values and out-of-range bounds.
func (f LogFilter) Validate() error {
	switch f.HabitType {
	case "", domain.HabitGood, domain.HabitBad:
	default:
		return domain.Invalid("habit_type", fmt.Sprintf("unknown habit type %q", f.HabitType))
	}
	if f.Mood != "" {
		if _, err := domain.ParseMood(string(f.Mood)); err != nil {
			return err
		}
	}
	if f.MinCompletion != nil && (*f.MinCompletion < 0 || *f.MinCompletion > 1) {
		return domain.Invalid("min_completion", "must be between 0 and 1")
	}
	if f.Limit < 0 {
		return domain.Invalid("limit", "must not be negative")
	}
	return nil
}

// CreateLog inserts a log. A second log for the same habit and date fails
// with domain.ErrDuplicateLog.
func (t *Tx) CreateLog(l domain.CompletionLog) error {
	var exists int
	err := t.queryRow(
		`SELECT COUNT(*) FROM habit_logs WHERE habit_id = ? AND date = ?`,
		l.HabitID, formatDate(l.Date),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate log: %w", err)
	}
	if exists > 0 {
		return domain.ErrDuplicateLog
	}

	_, err = t.exec(
		`INSERT INTO habit_logs (`+logColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.HabitID, l.UserID, formatDate(l.Date), l.Status, l.CompletionValue,
		l.XPEarned, l.StreakBonus, nullableClock(l.TimeCompleted), nullableString(l.Mood),
		nullableInt(l.DifficultyRating), l.Notes, l.CreatedAt.Unix(), l.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// GetLog returns a log owned by userID, or domain.ErrLogNotFound.
func (t *Tx) GetLog(userID, id string) (*domain.CompletionLog, error) {
	row := t.queryRow(`SELECT `+logColumns+` FROM habit_logs WHERE id = ? AND user_id = ?`, id, userID)
	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLogNotFound
	}
	return l, err
}

// ListLogs returns a user's logs, newest date first.
func (t *Tx) ListLogs(userID string, f LogFilter) ([]domain.CompletionLog, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.HabitID != "" {
		where = append(where, "habit_id = ?")
		args = append(args, f.HabitID)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, formatDate(f.To))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.HabitType != "" {
		where = append(where, "habit_id IN (SELECT id FROM habits WHERE user_id = ? AND type = ?)")
		args = append(args, userID, f.HabitType)
	}
	if f.Category != "" {
		where = append(where, "habit_id IN (SELECT id FROM habits WHERE user_id = ? AND category = ?)")
		args = append(args, userID, f.Category)
	}
	if f.Mood != "" {
		where = append(where, "mood = ?")
		args = append(args, f.Mood)
	}
	if f.MinCompletion != nil {
		where = append(where, "completion_value >= ?")
		args = append(args, *f.MinCompletion)
	}

	q := `SELECT ` + logColumns + ` FROM habit_logs WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC, id`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := t.query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []domain.CompletionLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// UpdateLog writes the mutable fields of l. Habit and date are fixed.
func (t *Tx) UpdateLog(l domain.CompletionLog) error {
	res, err := t.exec(
		`UPDATE habit_logs SET status = ?, completion_value = ?, xp_earned = ?, streak_bonus = ?,
			time_completed = ?, mood = ?, difficulty_rating = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		l.Status, l.CompletionValue, l.XPEarned, l.StreakBonus,
		nullableClock(l.TimeCompleted), nullableString(l.Mood), nullableInt(l.DifficultyRating),
		l.Notes, l.UpdatedAt.Unix(),
		l.ID, l.UserID,
	)
	if err != nil {
		return fmt.Errorf("update log: %w", err)
	}
	return requireOne(res, domain.ErrLogNotFound)
}

// DeleteLog removes a log.
func (t *Tx) DeleteLog(userID, id string) error {
	res, err := t.exec(`DELETE FROM habit_logs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return requireOne(res, domain.ErrLogNotFound)
}

func scanLog(s scanner) (*domain.CompletionLog, error) {
	var l domain.CompletionLog
	var date string
	var clock, mood sql.NullString
	var rating sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&l.ID, &l.HabitID, &l.UserID, &date, &l.Status, &l.CompletionValue,
		&l.XPEarned, &l.StreakBonus, &clock, &mood, &rating, &l.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if l.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if clock.Valid {
		c, err := domain.ParseClockTime(clock.String)
		if err != nil {
			return nil, err
		}
		l.TimeCompleted = &c
	}
	if mood.Valid {
		m := domain.Mood(mood.String)
		l.Mood = &m
	}
	if rating.Valid {
		r := int(rating.Int64)
		l.DifficultyRating = &r
	}
	l.CreatedAt = fromUnix(createdAt)
	l.UpdatedAt = fromUnix(updatedAt)
	return &l, nil
}

func nullableClock(c *domain.ClockTime) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.String(), Valid: true}
}
