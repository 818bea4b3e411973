package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
)

// ─── Badge Repository ───────────────────────────────────────────────────────

const badgeColumns = `id, name, description, icon, category, requirement_type, requirement_target,
	reward_xp, reward_coins`

// UpsertBadge inserts or replaces a catalogue entry by id.
func (t *Tx) UpsertBadge(b domain.Badge) error {
	if b.Requirement == nil {
		return domain.Invalid("requirement_type", "is required")
	}
	_, err := t.exec(
		`INSERT INTO badges (`+badgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			icon=excluded.icon,
			category=excluded.category,
			requirement_type=excluded.requirement_type,
			requirement_target=excluded.requirement_target,
			reward_xp=excluded.reward_xp,
			reward_coins=excluded.reward_coins`,
		b.ID, b.Name, b.Description, b.Icon, b.Category,
		b.Requirement.Kind(), b.Requirement.Target(), b.RewardXP, b.RewardCoins,
	)
	if err != nil {
		return fmt.Errorf("upsert badge %s: %w", b.ID, err)
	}
	return nil
}

// GetBadge returns a catalogue entry or domain.ErrBadgeNotFound.
func (t *Tx) GetBadge(id string) (*domain.Badge, error) {
	row := t.queryRow(`SELECT `+badgeColumns+` FROM badges WHERE id = ?`, id)
	b, err := scanBadge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBadgeNotFound
	}
	return b, err
}

// ListBadges returns the whole catalogue ordered by category and reward.
func (t *Tx) ListBadges() ([]domain.Badge, error) {
	rows, err := t.query(`SELECT ` + badgeColumns + ` FROM badges ORDER BY category, reward_xp, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := []domain.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}

// UnlockBadge records an unlock. Returns false if the badge was already
// unlocked for the user.
func (t *Tx) UnlockBadge(userID, badgeID string, at time.Time) (bool, error) {
	res, err := t.exec(
		`INSERT OR IGNORE INTO user_badges (user_id, badge_id, unlocked_at) VALUES (?, ?, ?)`,
		userID, badgeID, at.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("unlock badge %s: %w", badgeID, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListUnlocked returns a user's unlocked badges, most recent first.
func (t *Tx) ListUnlocked(userID string) ([]domain.UnlockedBadge, error) {
	rows, err := t.query(
		`SELECT badge_id, unlocked_at FROM user_badges WHERE user_id = ?
		 ORDER BY unlocked_at DESC, badge_id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UnlockedBadge{}
	for rows.Next() {
		var u domain.UnlockedBadge
		var at int64
		if err := rows.Scan(&u.BadgeID, &at); err != nil {
			return nil, err
		}
		u.UnlockedAt = fromUnix(at)
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanBadge(s scanner) (*domain.Badge, error) {
	var b domain.Badge
	var kind string
	var target int
	err := s.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Category,
		&kind, &target, &b.RewardXP, &b.RewardCoins)
	if err != nil {
		return nil, err
	}
	if b.Requirement, err = domain.ParseRequirement(kind, target); err != nil {
		return nil, fmt.Errorf("badge %s: %w", b.ID, err)
	}
	return &b, nil
}
