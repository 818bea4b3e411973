package domain

import (
	"fmt"
	"time"
)

// ─── Badge Types ────────────────────────────────────────────────────────────

// BadgeCategory groups badges by theme.
type BadgeCategory string

const (
	CatStreak      BadgeCategory = "streak"
	CatConsistency BadgeCategory = "consistency"
	CatVariety     BadgeCategory = "variety"
	CatMastery     BadgeCategory = "mastery"
	CatSpecial     BadgeCategory = "special"
)

// Badge is an immutable catalogue entry.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Category    BadgeCategory `json:"category"`
	Requirement Requirement   `json:"-"`
	RewardXP    int64         `json:"reward_xp"`
	RewardCoins int64         `json:"reward_coins"`
}

// UnlockedBadge records when a user earned a badge.
type UnlockedBadge struct {
	BadgeID    string    `json:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// ─── Requirements ───────────────────────────────────────────────────────────
// Requirement is a closed union: only types in this file implement it.
// Consumers switch on the concrete type.

// RequirementKind is the persisted discriminant of a Requirement.
type RequirementKind string

const (
	KindMorningCompletions        RequirementKind = "morning_completions"
	KindNightCompletions          RequirementKind = "night_completions"
	KindPerfectWeekends           RequirementKind = "perfect_weekends"
	KindPerfectWeek               RequirementKind = "perfect_week"
	KindPerfectMonth              RequirementKind = "perfect_month"
	KindSuccessRate               RequirementKind = "success_rate"
	KindGoodHabitCompletions      RequirementKind = "good_habit_completions"
	KindBadHabitAvoided           RequirementKind = "bad_habit_avoided"
	KindBadHabitStreak            RequirementKind = "bad_habit_streak"
	KindLevel                     RequirementKind = "level"
	KindMorningRoutineCompletions RequirementKind = "morning_routine_completions"
	KindUniqueHabits              RequirementKind = "unique_habits"
	KindBalancedHabits            RequirementKind = "balanced_habits"
	KindComeback                  RequirementKind = "comeback"
	KindResilientComeback         RequirementKind = "resilient_comeback"
	KindFirstCompletion           RequirementKind = "first_completion"
	KindFirstWeek                 RequirementKind = "first_week"
	KindAppUsageDays              RequirementKind = "app_usage_days"
)

// Requirement is the unlock condition of a badge.
type Requirement interface {
	Kind() RequirementKind
	// Target is the persisted numeric threshold (0 when unused).
	Target() int
	sealed()
}

type (
	// MorningCompletions counts completed logs before 08:00.
	MorningCompletions struct{ Count int }
	// NightCompletions counts completed logs after 22:00.
	NightCompletions struct{ Count int }
	// PerfectWeekends counts perfect Sat+Sun pairs in the last three months.
	PerfectWeekends struct{ Count int }
	// PerfectWeek requires every day of the current week to be perfect.
	PerfectWeek struct{}
	// PerfectMonth requires every day of the current month to be perfect.
	PerfectMonth struct{}
	// SuccessRate is the completed share of the last 30 days of logs, in percent.
	SuccessRate struct{ Percent int }
	// GoodHabitCompletions counts completed logs on good habits.
	GoodHabitCompletions struct{ Count int }
	// BadHabitAvoided counts distinct days a bad habit was logged as not done.
	BadHabitAvoided struct{ Days int }
	// BadHabitStreak counts days back from today without a completed bad habit.
	BadHabitStreak struct{ Days int }
	// Level requires the user to reach a level.
	Level struct{ Level int }
	// MorningRoutineCompletions counts completed logs on morning_routine habits.
	MorningRoutineCompletions struct{ Count int }
	// UniqueHabits counts the user's habits.
	UniqueHabits struct{ Count int }
	// BalancedHabits needs 5 good, 3 bad and Total habits overall.
	BalancedHabits struct{ Total int }
	// Comeback requires a gap of at least three days since the last log.
	Comeback struct{}
	// ResilientComeback has no defined semantics yet.
	ResilientComeback struct{}
	// FirstCompletion requires any completed log.
	FirstCompletion struct{}
	// FirstWeek requires five completions within a week of the first one.
	FirstWeek struct{}
	// AppUsageDays counts distinct days with any log.
	AppUsageDays struct{ Days int }
)

func (MorningCompletions) Kind() RequirementKind        { return KindMorningCompletions }
func (NightCompletions) Kind() RequirementKind          { return KindNightCompletions }
func (PerfectWeekends) Kind() RequirementKind           { return KindPerfectWeekends }
func (PerfectWeek) Kind() RequirementKind               { return KindPerfectWeek }
func (PerfectMonth) Kind() RequirementKind              { return KindPerfectMonth }
func (SuccessRate) Kind() RequirementKind               { return KindSuccessRate }
func (GoodHabitCompletions) Kind() RequirementKind      { return KindGoodHabitCompletions }
func (BadHabitAvoided) Kind() RequirementKind           { return KindBadHabitAvoided }
func (BadHabitStreak) Kind() RequirementKind            { return KindBadHabitStreak }
func (Level) Kind() RequirementKind                     { return KindLevel }
func (MorningRoutineCompletions) Kind() RequirementKind { return KindMorningRoutineCompletions }
func (UniqueHabits) Kind() RequirementKind              { return KindUniqueHabits }
func (BalancedHabits) Kind() RequirementKind            { return KindBalancedHabits }
func (Comeback) Kind() RequirementKind                  { return KindComeback }
func (ResilientComeback) Kind() RequirementKind         { return KindResilientComeback }
func (FirstCompletion) Kind() RequirementKind           { return KindFirstCompletion }
func (FirstWeek) Kind() RequirementKind                 { return KindFirstWeek }
func (AppUsageDays) Kind() RequirementKind              { return KindAppUsageDays }

func (r MorningCompletions) Target() int        { return r.Count }
func (r NightCompletions) Target() int          { return r.Count }
func (r PerfectWeekends) Target() int           { return r.Count }
func (PerfectWeek) Target() int                 { return 0 }
func (PerfectMonth) Target() int                { return 0 }
func (r SuccessRate) Target() int               { return r.Percent }
func (r GoodHabitCompletions) Target() int      { return r.Count }
func (r BadHabitAvoided) Target() int           { return r.Days }
func (r BadHabitStreak) Target() int            { return r.Days }
func (r Level) Target() int                     { return r.Level }
func (r MorningRoutineCompletions) Target() int { return r.Count }
func (r UniqueHabits) Target() int              { return r.Count }
func (r BalancedHabits) Target() int            { return r.Total }
func (Comeback) Target() int                    { return 0 }
func (ResilientComeback) Target() int           { return 0 }
func (FirstCompletion) Target() int             { return 0 }
func (FirstWeek) Target() int                   { return 0 }
func (r AppUsageDays) Target() int              { return r.Days }

func (MorningCompletions) sealed()        {}
func (NightCompletions) sealed()          {}
func (PerfectWeekends) sealed()           {}
func (PerfectWeek) sealed()               {}
func (PerfectMonth) sealed()              {}
func (SuccessRate) sealed()               {}
func (GoodHabitCompletions) sealed()      {}
func (BadHabitAvoided) sealed()           {}
func (BadHabitStreak) sealed()            {}
func (Level) sealed()                     {}
func (MorningRoutineCompletions) sealed() {}
func (UniqueHabits) sealed()              {}
func (BalancedHabits) sealed()            {}
func (Comeback) sealed()                  {}
func (ResilientComeback) sealed()         {}
func (FirstCompletion) sealed()           {}
func (FirstWeek) sealed()                 {}
func (AppUsageDays) sealed()              {}

// ParseRequirement rebuilds a Requirement from its persisted form.
// Threshold kinds need a positive target.
func ParseRequirement(kind string, target int) (Requirement, error) {
	positive := func(r Requirement) (Requirement, error) {
		if target <= 0 {
			return nil, Invalid("requirement_target", fmt.Sprintf("%s needs a positive target, got %d", kind, target))
		}
		return r, nil
	}

	switch RequirementKind(kind) {
	case KindMorningCompletions:
		return positive(MorningCompletions{Count: target})
	case KindNightCompletions:
		return positive(NightCompletions{Count: target})
	case KindPerfectWeekends:
		return positive(PerfectWeekends{Count: target})
	case KindPerfectWeek:
		return PerfectWeek{}, nil
	case KindPerfectMonth:
		return PerfectMonth{}, nil
	case KindSuccessRate:
		return positive(SuccessRate{Percent: target})
	case KindGoodHabitCompletions:
		return positive(GoodHabitCompletions{Count: target})
	case KindBadHabitAvoided:
		return positive(BadHabitAvoided{Days: target})
	case KindBadHabitStreak:
		return positive(BadHabitStreak{Days: target})
	case KindLevel:
		return positive(Level{Level: target})
	case KindMorningRoutineCompletions:
		return positive(MorningRoutineCompletions{Count: target})
	case KindUniqueHabits:
		return positive(UniqueHabits{Count: target})
	case KindBalancedHabits:
		return positive(BalancedHabits{Total: target})
	case KindComeback:
		return Comeback{}, nil
	case KindResilientComeback:
		return ResilientComeback{}, nil
	case KindFirstCompletion:
		return FirstCompletion{}, nil
	case KindFirstWeek:
		return FirstWeek{}, nil
	case KindAppUsageDays:
		return positive(AppUsageDays{Days: target})
	}
	return nil, Invalid("requirement_type", fmt.Sprintf("unknown requirement type %q", kind))
}
