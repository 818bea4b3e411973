package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/metrics"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// LogInput is a new habit log as submitted by a user.
type LogInput struct {
	HabitID          string            `json:"habit_id"`
	Date             time.Time         `json:"date"`
	Status           domain.LogStatus  `json:"status"`
	CompletionValue  *float64          `json:"completion_value,omitempty"`
	TimeCompleted    *domain.ClockTime `json:"time_completed,omitempty"`
	Mood             *domain.Mood      `json:"mood,omitempty"`
	DifficultyRating *int              `json:"difficulty_rating,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// LogPatch changes an existing log. Nil fields are left alone; the Clear
// flags drop an optional field and win over a value sent alongside.
type LogPatch struct {
	Status           *domain.LogStatus `json:"status,omitempty"`
	CompletionValue  *float64          `json:"completion_value,omitempty"`
	TimeCompleted    *domain.ClockTime `json:"time_completed,omitempty"`
	Mood             *domain.Mood      `json:"mood,omitempty"`
	DifficultyRating *int              `json:"difficulty_rating,omitempty"`
	Notes            *string           `json:"notes,omitempty"`

	ClearTimeCompleted    bool `json:"clear_time_completed,omitempty"`
	ClearMood             bool `json:"clear_mood,omitempty"`
	ClearDifficultyRating bool `json:"clear_difficulty_rating,omitempty"`
}

// LogResult is what a log mutation did.
type LogResult struct {
	Log     *domain.CompletionLog `json:"log,omitempty"`
	Ledger  LedgerEntry           `json:"ledger"`
	Awarded []Award               `json:"badges_awarded"`
	User    domain.User           `json:"user"`
}

// LogService records habit logs and runs the engine over each change.
type LogService struct {
	db    *sqlite.DB
	clock Clock
}

// NewLogService creates a log service.
func NewLogService(db *sqlite.DB, clock Clock) *LogService {
	return &LogService{db: db, clock: clock}
}

// Submit records a log, pays its XP, advances or resets the habit streak and
// evaluates badges, all in one transaction.
func (s *LogService) Submit(ctx context.Context, userID string, in LogInput) (LogResult, error) {
	now := s.clock()
	value := domain.DefaultCompletionValue(in.Status)
	if in.CompletionValue != nil {
		value = *in.CompletionValue
	}
	l := domain.CompletionLog{
		ID:               uuid.NewString(),
		HabitID:          in.HabitID,
		UserID:           userID,
		Date:             Day(in.Date),
		Status:           in.Status,
		CompletionValue:  value,
		TimeCompleted:    in.TimeCompleted,
		Mood:             in.Mood,
		DifficultyRating: in.DifficultyRating,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := l.Validate(Day(now)); err != nil {
		return LogResult{}, err
	}

	var out LogResult
	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		h, err := tx.GetHabit(userID, l.HabitID)
		if err != nil {
			return err
		}
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}

		l.XPEarned, l.StreakBonus = CompletionXP(h.BaseXP, l.Status, l.CompletionValue, h.CurrentStreak)
		ApplyStreak(h, l.Status, l.CompletionValue)
		if err := tx.CreateLog(l); err != nil {
			return err
		}
		if err := tx.UpdateHabit(*h); err != nil {
			return err
		}
		entry := ApplyXP(u, l.XPEarned)

		out, err = s.finish(tx, u, entry, now)
		out.Log = &l
		return err
	})
	if err != nil {
		return LogResult{}, err
	}
	metrics.LogsSubmitted.WithLabelValues(string(l.Status)).Inc()
	recordLedger(out)
	return out, nil
}

// Update changes a log. When status or value change, its XP is recomputed
// and only the difference enters the ledger.
func (s *LogService) Update(ctx context.Context, userID, logID string, p LogPatch) (LogResult, error) {
	now := s.clock()
	var out LogResult
	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		l, err := tx.GetLog(userID, logID)
		if err != nil {
			return err
		}
		h, err := tx.GetHabit(userID, l.HabitID)
		if err != nil {
			return err
		}
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}

		before := *l
		applyPatch(l, p)
		l.UpdatedAt = now
		if err := l.Validate(Day(now)); err != nil {
			return err
		}

		var entry LedgerEntry
		if l.Status != before.Status || l.CompletionValue != before.CompletionValue {
			l.XPEarned, l.StreakBonus = CompletionXP(h.BaseXP, l.Status, l.CompletionValue, h.CurrentStreak)
			restreak(h, before, *l)
			if err := tx.UpdateHabit(*h); err != nil {
				return err
			}
			entry = ApplyXP(u, l.XPEarned-before.XPEarned)
		}
		if err := tx.UpdateLog(*l); err != nil {
			return err
		}

		out, err = s.finish(tx, u, entry, now)
		out.Log = l
		return err
	})
	if err != nil {
		return LogResult{}, err
	}
	metrics.LogsRevised.WithLabelValues("update").Inc()
	recordLedger(out)
	return out, nil
}

// Delete removes a log and takes back the XP and coins it paid. Levels
// already reached are kept. Badges are not re-evaluated.
func (s *LogService) Delete(ctx context.Context, userID, logID string) (LogResult, error) {
	var out LogResult
	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		l, err := tx.GetLog(userID, logID)
		if err != nil {
			return err
		}
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		if l.IsFullCompletion() {
			h, err := tx.GetHabit(userID, l.HabitID)
			if err != nil {
				return err
			}
			h.TotalCompletions = max(0, h.TotalCompletions-1)
			if err := tx.UpdateHabit(*h); err != nil {
				return err
			}
		}
		if err := tx.DeleteLog(userID, logID); err != nil {
			return err
		}

		out.Ledger = ApplyXP(u, -l.XPEarned)
		out.Awarded = []Award{}
		out.User = *u
		return tx.SaveUserProgress(*u)
	})
	if err != nil {
		return LogResult{}, err
	}
	metrics.LogsRevised.WithLabelValues("delete").Inc()
	recordLedger(out)
	return out, nil
}

// Get returns one log.
func (s *LogService) Get(ctx context.Context, userID, logID string) (*domain.CompletionLog, error) {
	var out *domain.CompletionLog
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = tx.GetLog(userID, logID)
		return err
	})
	return out, err
}

// List returns the user's logs matching f.
func (s *LogService) List(ctx context.Context, userID string, f sqlite.LogFilter) ([]domain.CompletionLog, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []domain.CompletionLog
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListLogs(userID, f)
		return err
	})
	return out, err
}

// finish evaluates badges after a ledger change and saves the user.
func (s *LogService) finish(tx *sqlite.Tx, u *domain.User, entry LedgerEntry, now time.Time) (LogResult, error) {
	ev, err := loadEvaluation(tx, u.ID, now)
	if err != nil {
		return LogResult{}, fmt.Errorf("load badges: %w", err)
	}
	// Evaluate against the counters already changed in this transaction.
	*ev.user = *u
	awards := Evaluate(ev.history, ev.catalogue, ev.unlocked, now)
	if err := ev.persist(tx, awards); err != nil {
		return LogResult{}, err
	}
	*u = *ev.user
	return LogResult{Ledger: entry, Awarded: nonNil(awards), User: *u}, nil
}

func applyPatch(l *domain.CompletionLog, p LogPatch) {
	if p.Status != nil {
		l.Status = *p.Status
		if p.CompletionValue == nil {
			l.CompletionValue = domain.DefaultCompletionValue(l.Status)
		}
	}
	if p.CompletionValue != nil {
		l.CompletionValue = *p.CompletionValue
	}
	if p.TimeCompleted != nil {
		l.TimeCompleted = p.TimeCompleted
	}
	if p.Mood != nil {
		l.Mood = p.Mood
	}
	if p.DifficultyRating != nil {
		l.DifficultyRating = p.DifficultyRating
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	if p.ClearTimeCompleted {
		l.TimeCompleted = nil
	}
	if p.ClearMood {
		l.Mood = nil
	}
	if p.ClearDifficultyRating {
		l.DifficultyRating = nil
	}
}

// restreak adjusts habit counters when a log changes between full and
// non-full completion. Edits that keep the kind leave counters alone.
func restreak(h *domain.Habit, before, after domain.CompletionLog) {
	wasFull, isFull := before.IsFullCompletion(), after.IsFullCompletion()
	switch {
	case !wasFull && isFull:
		ApplyStreak(h, after.Status, after.CompletionValue)
	case wasFull && !isFull:
		h.TotalCompletions = max(0, h.TotalCompletions-1)
		ApplyStreak(h, after.Status, after.CompletionValue)
	}
}

func recordLedger(r LogResult) {
	switch {
	case r.Ledger.XPDelta > 0:
		metrics.XPAwarded.WithLabelValues("log").Add(float64(r.Ledger.XPDelta))
	case r.Ledger.XPDelta < 0:
		metrics.XPRetracted.Add(float64(-r.Ledger.XPDelta))
	}
	metrics.LevelUps.Add(float64(r.Ledger.LevelsGained))
	recordAwards(r.User.ID, r.Awarded)
}
