package engagement

import (
	"context"
	"math"

	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// LevelThreshold is the XP needed to leave a level: level × 100.
func LevelThreshold(level int) int64 {
	return int64(level) * 100
}

// LevelUpCoins is the coin bonus for arriving at newLevel.
func LevelUpCoins(newLevel int) int64 {
	return int64(newLevel) * 10
}

// CoinsForXP converts earned XP into coins: ceil(xp/2).
func CoinsForXP(xp int64) int64 {
	if xp <= 0 {
		return 0
	}
	return (xp + 1) / 2
}

// CompletionXP is the XP a log earns and the streak bonus included in it.
// streakBefore is the habit's streak before this log is counted.
func CompletionXP(baseXP int64, status domain.LogStatus, value float64, streakBefore int) (xp, bonus int64) {
	earns := status == domain.StatusCompleted || (status == domain.StatusPartial && value > 0)
	if !earns {
		return 0, 0
	}
	xp = int64(math.Round(float64(baseXP) * value))
	if value >= 1.0 {
		bonus = StreakBonus(streakBefore)
		xp += bonus
	}
	return xp, bonus
}

// LedgerEntry describes what one ledger operation did to a user.
type LedgerEntry struct {
	XPDelta      int64 `json:"xp_delta"`
	CoinsDelta   int64 `json:"coins_delta"`
	LevelsGained int   `json:"levels_gained"`
	Level        int   `json:"level"`
}

// LeveledUp reports whether the entry crossed at least one level.
func (e LedgerEntry) LeveledUp() bool { return e.LevelsGained > 0 }

// ApplyXP applies earned (or retracted) log XP to a user.
//
// A positive delta raises current and total XP, pays ceil(delta/2) coins and
// then rolls levels over. A negative delta lowers XP and coins with a floor
// of zero; the level is never taken back.
func ApplyXP(u *domain.User, delta int64) LedgerEntry {
	before := *u
	switch {
	case delta > 0:
		u.CurrentXP += delta
		u.TotalXP += delta
		u.Coins += CoinsForXP(delta)
	case delta < 0:
		u.CurrentXP = max(0, u.CurrentXP+delta)
		u.TotalXP = max(0, u.TotalXP+delta)
		u.Coins = max(0, u.Coins-CoinsForXP(-delta))
	}
	gained := normalizeLevel(u)
	return diff(before, *u, gained)
}

// Reward pays a badge reward: xp enters the ledger like earned XP but
// without the coin conversion, coins are added as-is.
func Reward(u *domain.User, xp, coins int64) LedgerEntry {
	before := *u
	if xp > 0 {
		u.CurrentXP += xp
		u.TotalXP += xp
	}
	if coins > 0 {
		u.Coins += coins
	}
	gained := normalizeLevel(u)
	return diff(before, *u, gained)
}

// normalizeLevel rolls surplus XP into levels. Each pass consumes the
// threshold of the level being left and re-checks against the next one.
func normalizeLevel(u *domain.User) int {
	if u.Level < 1 {
		u.Level = 1
	}
	gained := 0
	for u.CurrentXP >= LevelThreshold(u.Level) {
		u.CurrentXP -= LevelThreshold(u.Level)
		u.Level++
		u.Coins += LevelUpCoins(u.Level)
		gained++
	}
	return gained
}

func diff(before, after domain.User, gained int) LedgerEntry {
	return LedgerEntry{
		XPDelta:      after.TotalXP - before.TotalXP,
		CoinsDelta:   after.Coins - before.Coins,
		LevelsGained: gained,
		Level:        after.Level,
	}
}

// ─── Service ────────────────────────────────────────────────────────────────

// LevelProgress is the user's position within the current level.
type LevelProgress struct {
	Level       int     `json:"level"`
	CurrentXP   int64   `json:"current_xp"`
	TotalXP     int64   `json:"total_xp"`
	Coins       int64   `json:"coins"`
	Threshold   int64   `json:"threshold"`
	XPToNext    int64   `json:"xp_to_next_level"`
	ProgressPct float64 `json:"progress_pct"`
}

// ProgressFor derives level progress from a user's counters.
func ProgressFor(u domain.User) LevelProgress {
	threshold := LevelThreshold(max(1, u.Level))
	pct := float64(u.CurrentXP) / float64(threshold) * 100.0
	pct = math.Min(100, math.Max(0, pct))
	return LevelProgress{
		Level:       u.Level,
		CurrentXP:   u.CurrentXP,
		TotalXP:     u.TotalXP,
		Coins:       u.Coins,
		Threshold:   threshold,
		XPToNext:    max(0, threshold-u.CurrentXP),
		ProgressPct: pct,
	}
}

// LevelService reads level progress.
type LevelService struct {
	db *sqlite.DB
}

// NewLevelService creates a level service.
func NewLevelService(db *sqlite.DB) *LevelService {
	return &LevelService{db: db}
}

// Progress returns the user's level progress.
func (l *LevelService) Progress(ctx context.Context, userID string) (LevelProgress, error) {
	var out LevelProgress
	err := l.db.View(ctx, func(tx *sqlite.Tx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		out = ProgressFor(*u)
		return nil
	})
	return out, err
}
