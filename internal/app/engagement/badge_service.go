package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/metrics"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
	"github.com/habitforge/habitforge/internal/logging"
)

// BadgeService lists, evaluates and claims badges.
type BadgeService struct {
	db    *sqlite.DB
	clock Clock
}

// NewBadgeService creates a badge service.
func NewBadgeService(db *sqlite.DB, clock Clock) *BadgeService {
	return &BadgeService{db: db, clock: clock}
}

// SeedCatalogue upserts the built-in badges. Existing unlocks are kept.
func SeedCatalogue(ctx context.Context, db *sqlite.DB, badges []domain.Badge) error {
	return db.Update(ctx, func(tx *sqlite.Tx) error {
		for _, b := range badges {
			if err := tx.UpsertBadge(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the catalogue with the user's unlock state and progress.
func (s *BadgeService) List(ctx context.Context, userID string) ([]BadgeStatus, error) {
	var out []BadgeStatus
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		ev, err := loadEvaluation(tx, userID, s.clock())
		if err != nil {
			return err
		}
		out = make([]BadgeStatus, 0, len(ev.catalogue))
		for _, b := range ev.catalogue {
			out = append(out, StatusOf(ev.history, b, ev.unlocked))
		}
		return nil
	})
	return out, err
}

// Get returns one badge with the user's unlock state and progress.
func (s *BadgeService) Get(ctx context.Context, userID, badgeID string) (BadgeStatus, error) {
	var out BadgeStatus
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		b, err := tx.GetBadge(badgeID)
		if err != nil {
			return err
		}
		ev, err := loadEvaluation(tx, userID, s.clock())
		if err != nil {
			return err
		}
		out = StatusOf(ev.history, *b, ev.unlocked)
		return nil
	})
	return out, err
}

// Unlocked returns only the badges the user has earned, newest first.
func (s *BadgeService) Unlocked(ctx context.Context, userID string) ([]BadgeStatus, error) {
	var out []BadgeStatus
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		unlocked, err := tx.ListUnlocked(userID)
		if err != nil {
			return fmt.Errorf("list unlocked: %w", err)
		}
		out = make([]BadgeStatus, 0, len(unlocked))
		for _, u := range unlocked {
			b, err := tx.GetBadge(u.BadgeID)
			if err != nil {
				return err
			}
			out = append(out, StatusOf(nil, *b, Unlocked{u.BadgeID: u.UnlockedAt}))
		}
		return nil
	})
	return out, err
}

// CheckResult is the outcome of an explicit evaluation.
type CheckResult struct {
	Awarded []Award     `json:"awarded"`
	User    domain.User `json:"user"`
}

// Check evaluates every locked badge and unlocks the ones now earned.
func (s *BadgeService) Check(ctx context.Context, userID string) (CheckResult, error) {
	var out CheckResult
	now := s.clock()
	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		ev, err := loadEvaluation(tx, userID, now)
		if err != nil {
			return err
		}
		awards := Evaluate(ev.history, ev.catalogue, ev.unlocked, now)
		if err := ev.persist(tx, awards); err != nil {
			return err
		}
		out = CheckResult{Awarded: nonNil(awards), User: *ev.user}
		return nil
	})
	if err == nil {
		recordAwards(userID, out.Awarded)
	}
	return out, err
}

// Claim re-checks one badge on request. Rejections come back as a result
// with a non-claimed outcome, not as an error.
func (s *BadgeService) Claim(ctx context.Context, userID, badgeID string) (ClaimResult, error) {
	var out ClaimResult
	now := s.clock()
	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		b, err := tx.GetBadge(badgeID)
		if err != nil {
			return err
		}
		ev, err := loadEvaluation(tx, userID, now)
		if err != nil {
			return err
		}
		out = Claim(ev.history, ev.catalogue, *b, ev.unlocked, now)
		if out.Outcome != ClaimGranted {
			return nil
		}
		return ev.persist(tx, append([]Award{*out.Award}, out.Cascade...))
	})
	switch {
	case err != nil:
	case out.Outcome == ClaimGranted:
		recordAwards(userID, append([]Award{*out.Award}, out.Cascade...))
	default:
		metrics.ClaimRejections.WithLabelValues(string(out.Outcome)).Inc()
	}
	return out, err
}

// ─── Evaluation plumbing ────────────────────────────────────────────────────

// evaluation is a user's history loaded inside a transaction.
type evaluation struct {
	user      *domain.User
	history   *History
	catalogue []domain.Badge
	unlocked  Unlocked
}

func loadEvaluation(tx *sqlite.Tx, userID string, now time.Time) (*evaluation, error) {
	u, err := tx.GetUser(userID)
	if err != nil {
		return nil, err
	}
	habits, err := tx.ListHabits(userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	logs, err := tx.ListLogs(userID, sqlite.LogFilter{})
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	catalogue, err := tx.ListBadges()
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	rows, err := tx.ListUnlocked(userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked: %w", err)
	}
	unlocked := make(Unlocked, len(rows))
	for _, r := range rows {
		unlocked[r.BadgeID] = r.UnlockedAt
	}

	return &evaluation{
		user:      u,
		history:   NewHistory(Snapshot{User: u, Habits: habits, Logs: logs, Today: now}),
		catalogue: catalogue,
		unlocked:  unlocked,
	}, nil
}

// persist writes unlocks and the user's counters.
func (ev *evaluation) persist(tx *sqlite.Tx, awards []Award) error {
	for _, a := range awards {
		if _, err := tx.UnlockBadge(ev.user.ID, a.Badge.ID, a.UnlockedAt); err != nil {
			return err
		}
	}
	return tx.SaveUserProgress(*ev.user)
}

// recordAwards reports committed unlocks.
func recordAwards(userID string, awards []Award) {
	for _, a := range awards {
		metrics.BadgesUnlocked.WithLabelValues(a.Badge.ID).Inc()
		metrics.XPAwarded.WithLabelValues("badge").Add(float64(a.Ledger.XPDelta))
		metrics.LevelUps.Add(float64(a.Ledger.LevelsGained))
		logging.Info("badge unlocked", "user", userID, "badge", a.Badge.ID, "level", a.Ledger.Level)
	}
}

func nonNil(awards []Award) []Award {
	if awards == nil {
		return []Award{}
	}
	return awards
}
