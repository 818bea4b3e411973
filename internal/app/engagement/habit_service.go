package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// HabitInput creates a habit. Zero values take defaults: good, daily,
// medium, base XP 10, active, starting today.
type HabitInput struct {
	Name        string
	Description string
	Category    string
	Type        domain.HabitType
	Frequency   domain.Frequency
	Difficulty  domain.Difficulty
	BaseXP      int64
	StartDate   time.Time
	EndDate     *time.Time
}

// HabitPatch changes a habit. Nil fields are left alone. Streak counters
// are owned by the log pipeline and cannot be patched.
type HabitPatch struct {
	Name        *string
	Description *string
	Category    *string
	Type        *domain.HabitType
	Frequency   *domain.Frequency
	Difficulty  *domain.Difficulty
	BaseXP      *int64
	IsActive    *bool
	StartDate   *time.Time
	EndDate     *time.Time
	ClearEnd    bool
}

// HabitService manages a user's habits.
type HabitService struct {
	db    *sqlite.DB
	clock Clock
}

// NewHabitService creates a habit service.
func NewHabitService(db *sqlite.DB, clock Clock) *HabitService {
	return &HabitService{db: db, clock: clock}
}

// Create validates and stores a new habit.
func (s *HabitService) Create(ctx context.Context, userID string, in HabitInput) (*domain.Habit, error) {
	now := s.clock()
	h := domain.Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Type:        in.Type,
		Frequency:   in.Frequency,
		Difficulty:  in.Difficulty,
		BaseXP:      in.BaseXP,
		IsActive:    true,
		StartDate:   Day(in.StartDate),
		EndDate:     in.EndDate,
		CreatedAt:   now,
	}
	if h.Type == "" {
		h.Type = domain.HabitGood
	}
	if h.Frequency == "" {
		h.Frequency = domain.FrequencyDaily
	}
	if h.Difficulty == "" {
		h.Difficulty = domain.DifficultyMedium
	}
	if h.BaseXP == 0 {
		h.BaseXP = domain.DefaultBaseXP
	}
	if in.StartDate.IsZero() {
		h.StartDate = Day(now)
	}
	if h.EndDate != nil {
		end := Day(*h.EndDate)
		h.EndDate = &end
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		return tx.CreateHabit(h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Get returns one of the user's habits.
func (s *HabitService) Get(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	var out *domain.Habit
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = tx.GetHabit(userID, habitID)
		return err
	})
	return out, err
}

// HabitFilter narrows List. Zero fields do not filter.
type HabitFilter struct {
	ActiveOnly bool
	Category   string
	Type       domain.HabitType
	Difficulty domain.Difficulty
}

// Validate rejects unknown enum values.
func (f HabitFilter) Validate() error {
	switch f.Type {
	case "", domain.HabitGood, domain.HabitBad:
	default:
		return domain.Invalid("type", fmt.Sprintf("unknown habit type %q", f.Type))
	}
	switch f.Difficulty {
	case "", domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return domain.Invalid("difficulty", fmt.Sprintf("unknown difficulty %q", f.Difficulty))
	}
	return nil
}

// Match reports whether h passes the filter.
func (f HabitFilter) Match(h domain.Habit) bool {
	switch {
	case f.ActiveOnly && !h.IsActive:
		return false
	case f.Category != "" && h.Category != f.Category:
		return false
	case f.Type != "" && h.Type != f.Type:
		return false
	case f.Difficulty != "" && h.Difficulty != f.Difficulty:
		return false
	}
	return true
}

// List returns the user's habits that pass f, oldest first.
func (s *HabitService) List(ctx context.Context, userID string, f HabitFilter) ([]domain.Habit, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []domain.Habit
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		habits, err := tx.ListHabits(userID)
		if err != nil {
			return err
		}
		out = habits[:0]
		for _, h := range habits {
			if f.Match(h) {
				out = append(out, h)
			}
		}
		return nil
	})
	return out, err
}

// Update applies a patch and re-validates.
func (s *HabitService) Update(ctx context.Context, userID, habitID string, p HabitPatch) (*domain.Habit, error) {
	var out *domain.Habit
	err := s.db.Update(ctx, func(tx *sqlite.Tx) error {
		h, err := tx.GetHabit(userID, habitID)
		if err != nil {
			return err
		}
		p.apply(h)
		if err := h.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateHabit(*h); err != nil {
			return err
		}
		out = h
		return nil
	})
	return out, err
}

// Delete removes a habit and its logs. XP already earned is kept.
func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	return s.db.Update(ctx, func(tx *sqlite.Tx) error {
		return tx.DeleteHabit(userID, habitID)
	})
}

func (p HabitPatch) apply(h *domain.Habit) {
	if p.Name != nil {
		h.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Category != nil {
		h.Category = *p.Category
	}
	if p.Type != nil {
		h.Type = *p.Type
	}
	if p.Frequency != nil {
		h.Frequency = *p.Frequency
	}
	if p.Difficulty != nil {
		h.Difficulty = *p.Difficulty
	}
	if p.BaseXP != nil {
		h.BaseXP = *p.BaseXP
	}
	if p.IsActive != nil {
		h.IsActive = *p.IsActive
	}
	if p.StartDate != nil {
		h.StartDate = Day(*p.StartDate)
	}
	if p.EndDate != nil {
		end := Day(*p.EndDate)
		h.EndDate = &end
	}
	if p.ClearEnd {
		h.EndDate = nil
	}
}
