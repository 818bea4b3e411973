package engagement

import (
	"fmt"
	"time"

	"github.com/habitforge/habitforge/internal/domain"
)

// Snapshot is everything the badge predicates may look at for one user.
// User is a pointer so rewards applied mid-evaluation are seen by later
// level checks.
type Snapshot struct {
	User   *domain.User
	Habits []domain.Habit
	Logs   []domain.CompletionLog
	Today  time.Time
}

// History indexes a Snapshot for the predicates. Build it once per
// evaluation with NewHistory.
type History struct {
	snap        Snapshot
	today       time.Time
	habits      map[string]domain.Habit
	completedOn map[time.Time]int
	logDays     map[time.Time]struct{}
	lastLogDay  time.Time
	firstDone   time.Time
}

// NewHistory indexes the snapshot.
func NewHistory(s Snapshot) *History {
	h := &History{
		snap:        s,
		today:       Day(s.Today),
		habits:      make(map[string]domain.Habit, len(s.Habits)),
		completedOn: make(map[time.Time]int),
		logDays:     make(map[time.Time]struct{}),
	}
	for _, hb := range s.Habits {
		h.habits[hb.ID] = hb
	}
	for _, l := range s.Logs {
		d := Day(l.Date)
		h.logDays[d] = struct{}{}
		if d.After(h.lastLogDay) {
			h.lastLogDay = d
		}
		if l.IsCompleted() {
			h.completedOn[d]++
			if h.firstDone.IsZero() || d.Before(h.firstDone) {
				h.firstDone = d
			}
		}
	}
	return h
}

// Level is the user's live level.
func (h *History) Level() int { return h.snap.User.Level }

// IsPerfectDay reports whether every habit active on day has a completed
// log. A day without active habits is never perfect.
func (h *History) IsPerfectDay(day time.Time) bool {
	day = Day(day)
	active := 0
	for _, hb := range h.snap.Habits {
		if hb.ActiveOn(day) {
			active++
		}
	}
	return active > 0 && h.completedOn[day] == active
}

// countCompleted counts completed logs accepted by keep.
func (h *History) countCompleted(keep func(domain.CompletionLog, domain.Habit) bool) int {
	n := 0
	for _, l := range h.snap.Logs {
		if !l.IsCompleted() {
			continue
		}
		if keep(l, h.habits[l.HabitID]) {
			n++
		}
	}
	return n
}

func (h *History) morningCompletions() int {
	return h.countCompleted(func(l domain.CompletionLog, _ domain.Habit) bool {
		return l.TimeCompleted != nil && l.TimeCompleted.Before(8, 0)
	})
}

func (h *History) nightCompletions() int {
	return h.countCompleted(func(l domain.CompletionLog, _ domain.Habit) bool {
		return l.TimeCompleted != nil && l.TimeCompleted.After(22, 0)
	})
}

func (h *History) goodHabitCompletions() int {
	return h.countCompleted(func(_ domain.CompletionLog, hb domain.Habit) bool {
		return hb.Type == domain.HabitGood
	})
}

func (h *History) morningRoutineCompletions() int {
	return h.countCompleted(func(_ domain.CompletionLog, hb domain.Habit) bool {
		return hb.Category == domain.CategoryMorningRoutine
	})
}

// perfectWeekends counts Saturdays in the trailing three months whose
// Saturday and Sunday are both perfect.
func (h *History) perfectWeekends() int {
	n := 0
	start := h.today.AddDate(0, -3, 0)
	EachDay(start, h.today, func(d time.Time) {
		if d.Weekday() == time.Saturday && h.IsPerfectDay(d) && h.IsPerfectDay(d.AddDate(0, 0, 1)) {
			n++
		}
	})
	return n
}

func (h *History) allPerfect(from, to time.Time) bool {
	ok := true
	EachDay(from, to, func(d time.Time) {
		if ok && !h.IsPerfectDay(d) {
			ok = false
		}
	})
	return ok
}

// successRate returns completed and total logs of the trailing 30 days,
// today included.
func (h *History) successRate() (completed, total int) {
	since := h.today.AddDate(0, 0, -29)
	for _, l := range h.snap.Logs {
		if Day(l.Date).Before(since) {
			continue
		}
		total++
		if l.IsCompleted() {
			completed++
		}
	}
	return completed, total
}

func (h *History) badHabitAvoidedDays() int {
	days := make(map[time.Time]struct{})
	for _, l := range h.snap.Logs {
		if l.IsCompleted() || h.habits[l.HabitID].Type != domain.HabitBad {
			continue
		}
		days[Day(l.Date)] = struct{}{}
	}
	return len(days)
}

// badHabitStreak walks back from today, stopping at the first day with a
// completed bad habit. It never looks further back than limit days.
func (h *History) badHabitStreak(limit int) int {
	slipped := make(map[time.Time]struct{})
	for _, l := range h.snap.Logs {
		if l.IsCompleted() && h.habits[l.HabitID].Type == domain.HabitBad {
			slipped[Day(l.Date)] = struct{}{}
		}
	}
	n := 0
	for i := 0; i < limit; i++ {
		if _, ok := slipped[h.today.AddDate(0, 0, -i)]; ok {
			break
		}
		n++
	}
	return n
}

func (h *History) habitCounts() (good, bad int) {
	for _, hb := range h.snap.Habits {
		switch hb.Type {
		case domain.HabitGood:
			good++
		case domain.HabitBad:
			bad++
		}
	}
	return good, bad
}

// daysSinceLastLog returns -1 when there are no logs.
func (h *History) daysSinceLastLog() int {
	if h.lastLogDay.IsZero() {
		return -1
	}
	return DaysBetween(h.lastLogDay, h.today)
}

const (
	firstWeekCompletions = 5
	comebackGapDays      = 3
	balancedMinGood      = 5
	balancedMinBad       = 3
)

// firstWeekCompletions counts completions in [first, first+7 days].
func (h *History) firstWeekCompletions() int {
	if h.firstDone.IsZero() {
		return 0
	}
	end := h.firstDone.AddDate(0, 0, 7)
	return h.countCompleted(func(l domain.CompletionLog, _ domain.Habit) bool {
		d := Day(l.Date)
		return !d.Before(h.firstDone) && !d.After(end)
	})
}

// ─── Dispatch ───────────────────────────────────────────────────────────────

// Meets reports whether the requirement holds for the history.
// Requirements without defined semantics return ErrRequirementUnsupported.
func Meets(h *History, r domain.Requirement) (bool, error) {
	switch r := r.(type) {
	case domain.MorningCompletions:
		return h.morningCompletions() >= r.Count, nil
	case domain.NightCompletions:
		return h.nightCompletions() >= r.Count, nil
	case domain.PerfectWeekends:
		return h.perfectWeekends() >= r.Count, nil
	case domain.PerfectWeek:
		start := StartOfWeek(h.today)
		return h.allPerfect(start, start.AddDate(0, 0, 6)), nil
	case domain.PerfectMonth:
		return h.allPerfect(StartOfMonth(h.today), EndOfMonth(h.today)), nil
	case domain.SuccessRate:
		completed, total := h.successRate()
		if total == 0 {
			return false, nil
		}
		return completed*100 >= r.Percent*total, nil
	case domain.GoodHabitCompletions:
		return h.goodHabitCompletions() >= r.Count, nil
	case domain.BadHabitAvoided:
		return h.badHabitAvoidedDays() >= r.Days, nil
	case domain.BadHabitStreak:
		return h.badHabitStreak(r.Days) >= r.Days, nil
	case domain.Level:
		return h.Level() >= r.Level, nil
	case domain.MorningRoutineCompletions:
		return h.morningRoutineCompletions() >= r.Count, nil
	case domain.UniqueHabits:
		return len(h.snap.Habits) >= r.Count, nil
	case domain.BalancedHabits:
		good, bad := h.habitCounts()
		return good+bad >= r.Total && good >= balancedMinGood && bad >= balancedMinBad, nil
	case domain.Comeback:
		return h.daysSinceLastLog() >= comebackGapDays, nil
	case domain.ResilientComeback:
		return false, domain.ErrRequirementUnsupported
	case domain.FirstCompletion:
		return !h.firstDone.IsZero(), nil
	case domain.FirstWeek:
		return h.firstWeekCompletions() >= firstWeekCompletions, nil
	case domain.AppUsageDays:
		return len(h.logDays) >= r.Days, nil
	}
	return false, fmt.Errorf("%w: %T", domain.ErrRequirementUnsupported, r)
}

// Progress returns 0..100 toward the requirement. It reaches 100 no later
// than Meets turns true for threshold kinds.
func Progress(h *History, r domain.Requirement) (int, error) {
	switch r := r.(type) {
	case domain.MorningCompletions:
		return pct(h.morningCompletions(), r.Count), nil
	case domain.NightCompletions:
		return pct(h.nightCompletions(), r.Count), nil
	case domain.PerfectWeekends:
		return pct(h.perfectWeekends(), r.Count), nil
	case domain.PerfectWeek, domain.PerfectMonth, domain.ResilientComeback:
		return 0, domain.ErrRequirementUnsupported
	case domain.SuccessRate:
		completed, total := h.successRate()
		if total == 0 || r.Percent <= 0 {
			return 0, nil
		}
		return min(100, completed*100*100/(total*r.Percent)), nil
	case domain.GoodHabitCompletions:
		return pct(h.goodHabitCompletions(), r.Count), nil
	case domain.BadHabitAvoided:
		return pct(h.badHabitAvoidedDays(), r.Days), nil
	case domain.BadHabitStreak:
		return pct(h.badHabitStreak(r.Days), r.Days), nil
	case domain.Level:
		return pct(h.Level(), r.Level), nil
	case domain.MorningRoutineCompletions:
		return pct(h.morningRoutineCompletions(), r.Count), nil
	case domain.UniqueHabits:
		return pct(len(h.snap.Habits), r.Count), nil
	case domain.BalancedHabits:
		good, bad := h.habitCounts()
		return min(pct(good+bad, r.Total), pct(good, balancedMinGood), pct(bad, balancedMinBad)), nil
	case domain.Comeback:
		days := h.daysSinceLastLog()
		if days < 0 {
			return 0, nil
		}
		return pct(days, comebackGapDays), nil
	case domain.FirstCompletion:
		if h.firstDone.IsZero() {
			return 0, nil
		}
		return 100, nil
	case domain.FirstWeek:
		return pct(h.firstWeekCompletions(), firstWeekCompletions), nil
	case domain.AppUsageDays:
		return pct(len(h.logDays), r.Days), nil
	}
	return 0, fmt.Errorf("%w: %T", domain.ErrRequirementUnsupported, r)
}

// pct is min(100, n*100/target) with integer truncation.
func pct(n, target int) int {
	if target <= 0 {
		return 100
	}
	if n <= 0 {
		return 0
	}
	return min(100, n*100/target)
}
