package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/habitforge/habitforge/internal/domain"
)

// ─── User Repository ────────────────────────────────────────────────────────

const userColumns = `id, name, level, current_xp, total_xp, coins, created_at`

// CreateUser inserts a new user.
func (t *Tx) CreateUser(u domain.User) error {
	_, err := t.exec(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Level, u.CurrentXP, u.TotalXP, u.Coins, u.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns the user or domain.ErrUserNotFound.
func (t *Tx) GetUser(id string) (*domain.User, error) {
	row := t.queryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

// ListUsers returns every user ordered by creation.
func (t *Tx) ListUsers() ([]domain.User, error) {
	rows, err := t.query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SaveUserProgress writes the ledger counters of u.
func (t *Tx) SaveUserProgress(u domain.User) error {
	res, err := t.exec(
		`UPDATE users SET level = ?, current_xp = ?, total_xp = ?, coins = ? WHERE id = ?`,
		u.Level, u.CurrentXP, u.TotalXP, u.Coins, u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireOne(res, domain.ErrUserNotFound)
}

// Standing is a user together with their unlocked badge count.
type Standing struct {
	User   domain.User
	Badges int
}

// Leaderboard returns the top users by level, then XP into the level, then
// badges unlocked.
func (t *Tx) Leaderboard(limit int) ([]Standing, error) {
	rows, err := t.query(
		`SELECT u.id, u.name, u.level, u.current_xp, u.total_xp, u.coins, u.created_at,
			COUNT(ub.badge_id) AS badges
		 FROM users u LEFT JOIN user_badges ub ON ub.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.level DESC, u.current_xp DESC, badges DESC, u.created_at, u.id
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Standing{}
	for rows.Next() {
		var st Standing
		var createdAt int64
		u := &st.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Level, &u.CurrentXP, &u.TotalXP, &u.Coins, &createdAt, &st.Badges); err != nil {
			return nil, err
		}
		u.CreatedAt = fromUnix(createdAt)
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var createdAt int64
	if err := s.Scan(&u.ID, &u.Name, &u.Level, &u.CurrentXP, &u.TotalXP, &u.Coins, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}
