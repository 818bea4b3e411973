package engagement

import (
	"errors"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
)

// Award is one badge unlocked during an evaluation.
type Award struct {
	Badge      domain.Badge `json:"badge"`
	UnlockedAt time.Time    `json:"unlocked_at"`
	Ledger     LedgerEntry  `json:"ledger"`
}

// Unlocked maps badge id to unlock time for one user.
type Unlocked map[string]time.Time

// Has reports whether the badge is already unlocked.
func (u Unlocked) Has(badgeID string) bool {
	_, ok := u[badgeID]
	return ok
}

// Evaluate unlocks every locked badge whose requirement holds. Rewards go
// through the ledger on the history's user, and each level-up triggers
// another pass restricted to level badges. A badge is awarded at most once:
// it is added to unlocked as soon as it is granted.
func Evaluate(h *History, catalogue []domain.Badge, unlocked Unlocked, now time.Time) []Award {
	awards := pass(h, catalogue, unlocked, now, false)
	return append(awards, cascade(h, catalogue, unlocked, now, awards)...)
}

// EvaluateLevels runs only the level badges. Used after a level-up that
// happened outside Evaluate.
func EvaluateLevels(h *History, catalogue []domain.Badge, unlocked Unlocked, now time.Time) []Award {
	awards := pass(h, catalogue, unlocked, now, true)
	return append(awards, cascade(h, catalogue, unlocked, now, awards)...)
}

func cascade(h *History, catalogue []domain.Badge, unlocked Unlocked, now time.Time, last []Award) []Award {
	var out []Award
	for leveledUp(last) {
		last = pass(h, catalogue, unlocked, now, true)
		out = append(out, last...)
	}
	return out
}

func pass(h *History, catalogue []domain.Badge, unlocked Unlocked, now time.Time, levelsOnly bool) []Award {
	var awards []Award
	for _, b := range catalogue {
		if unlocked.Has(b.ID) || b.Requirement == nil {
			continue
		}
		if levelsOnly && b.Requirement.Kind() != domain.KindLevel {
			continue
		}
		met, err := Meets(h, b.Requirement)
		if err != nil || !met {
			continue
		}
		awards = append(awards, grant(h, b, unlocked, now))
	}
	return awards
}

func grant(h *History, b domain.Badge, unlocked Unlocked, now time.Time) Award {
	unlocked[b.ID] = now
	return Award{
		Badge:      b,
		UnlockedAt: now,
		Ledger:     Reward(h.snap.User, b.RewardXP, b.RewardCoins),
	}
}

func leveledUp(awards []Award) bool {
	for _, a := range awards {
		if a.Ledger.LeveledUp() {
			return true
		}
	}
	return false
}

// ─── Claim ──────────────────────────────────────────────────────────────────

// ClaimOutcome is the result code of an explicit claim.
type ClaimOutcome string

const (
	ClaimGranted           ClaimOutcome = "claimed"
	ClaimAlreadyUnlocked   ClaimOutcome = "already_unlocked"
	ClaimRequirementNotMet ClaimOutcome = "requirement_not_met"
	ClaimUnsupported       ClaimOutcome = "unsupported"
)

// Err maps a rejection to its domain sentinel; nil when claimed.
func (o ClaimOutcome) Err() error {
	switch o {
	case ClaimAlreadyUnlocked:
		return domain.ErrAlreadyUnlocked
	case ClaimRequirementNotMet:
		return domain.ErrRequirementNotMet
	case ClaimUnsupported:
		return domain.ErrRequirementUnsupported
	}
	return nil
}

// ClaimResult reports an explicit claim. Cascade holds level badges that
// the claim's reward unlocked in turn.
type ClaimResult struct {
	Outcome ClaimOutcome `json:"outcome"`
	Award   *Award       `json:"award,omitempty"`
	Cascade []Award      `json:"cascade,omitempty"`
}

// Claim re-checks one badge and unlocks it when its requirement holds.
func Claim(h *History, catalogue []domain.Badge, b domain.Badge, unlocked Unlocked, now time.Time) ClaimResult {
	if unlocked.Has(b.ID) {
		return ClaimResult{Outcome: ClaimAlreadyUnlocked}
	}
	met, err := Meets(h, b.Requirement)
	switch {
	case errors.Is(err, domain.ErrRequirementUnsupported):
		return ClaimResult{Outcome: ClaimUnsupported}
	case err != nil, !met:
		return ClaimResult{Outcome: ClaimRequirementNotMet}
	}
	award := grant(h, b, unlocked, now)
	return ClaimResult{
		Outcome: ClaimGranted,
		Award:   &award,
		Cascade: cascade(h, catalogue, unlocked, now, []Award{award}),
	}
}

// ─── Status ─────────────────────────────────────────────────────────────────

// BadgeStatus is a catalogue entry as seen by one user.
type BadgeStatus struct {
	domain.Badge
	RequirementType   domain.RequirementKind `json:"requirement_type"`
	RequirementTarget int                    `json:"requirement_target"`
	Unlocked          bool                   `json:"unlocked"`
	UnlockedAt        *time.Time             `json:"unlocked_at,omitempty"`
	// Progress is nil when the requirement kind cannot report progress.
	Progress *int `json:"progress"`
}

// StatusOf computes the unlock state and progress of one badge.
func StatusOf(h *History, b domain.Badge, unlocked Unlocked) BadgeStatus {
	st := BadgeStatus{Badge: b}
	if b.Requirement != nil {
		st.RequirementType = b.Requirement.Kind()
		st.RequirementTarget = b.Requirement.Target()
	}
	if at, ok := unlocked[b.ID]; ok {
		at := at
		full := 100
		st.Unlocked = true
		st.UnlockedAt = &at
		st.Progress = &full
		return st
	}
	if b.Requirement == nil {
		return st
	}
	if p, err := Progress(h, b.Requirement); err == nil {
		st.Progress = &p
	}
	return st
}
