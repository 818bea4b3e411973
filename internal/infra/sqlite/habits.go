package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/habitforge/habitforge/internal/domain"
)

// ─── Habit Repository ───────────────────────────────────────────────────────

const habitColumns = `id, user_id, name, description, category, type, target_frequency, difficulty,
	base_xp, is_active, start_date, end_date, current_streak, longest_streak, total_completions, created_at`

// CreateHabit inserts a new habit.
func (t *Tx) CreateHabit(h domain.Habit) error {
	_, err := t.exec(
		`INSERT INTO habits (`+habitColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Description, h.Category, h.Type, h.Frequency, h.Difficulty,
		h.BaseXP, h.IsActive, formatDate(h.StartDate), nullableDate(h.EndDate),
		h.CurrentStreak, h.LongestStreak, h.TotalCompletions, h.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	return nil
}

// GetHabit returns a habit owned by userID, or domain.ErrHabitNotFound.
func (t *Tx) GetHabit(userID, id string) (*domain.Habit, error) {
	row := t.queryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHabitNotFound
	}
	return h, err
}

// ListHabits returns all of a user's habits, active or not, oldest first.
func (t *Tx) ListHabits(userID string) ([]domain.Habit, error) {
	rows, err := t.query(
		`SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at, id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []domain.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

// UpdateHabit writes every mutable field of h, streak counters included.
func (t *Tx) UpdateHabit(h domain.Habit) error {
	res, err := t.exec(
		`UPDATE habits SET name = ?, description = ?, category = ?, type = ?, target_frequency = ?,
			difficulty = ?, base_xp = ?, is_active = ?, start_date = ?, end_date = ?,
			current_streak = ?, longest_streak = ?, total_completions = ?
		 WHERE id = ? AND user_id = ?`,
		h.Name, h.Description, h.Category, h.Type, h.Frequency,
		h.Difficulty, h.BaseXP, h.IsActive, formatDate(h.StartDate), nullableDate(h.EndDate),
		h.CurrentStreak, h.LongestStreak, h.TotalCompletions,
		h.ID, h.UserID,
	)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	return requireOne(res, domain.ErrHabitNotFound)
}

// DeleteHabit removes a habit and, through the foreign key, its logs.
func (t *Tx) DeleteHabit(userID, id string) error {
	res, err := t.exec(`DELETE FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return requireOne(res, domain.ErrHabitNotFound)
}

func scanHabit(s scanner) (*domain.Habit, error) {
	var h domain.Habit
	var start string
	var end sql.NullString
	var createdAt int64

	err := s.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Category, &h.Type, &h.Frequency,
		&h.Difficulty, &h.BaseXP, &h.IsActive, &start, &end,
		&h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &createdAt)
	if err != nil {
		return nil, err
	}

	if h.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if end.Valid {
		d, err := parseDate(end.String)
		if err != nil {
			return nil, err
		}
		h.EndDate = &d
	}
	h.CreatedAt = fromUnix(createdAt)
	return &h, nil
}
