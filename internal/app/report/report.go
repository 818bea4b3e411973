// Package report aggregates habit logs into calendar, weekly, monthly and
// lifetime views. Builders are pure; Service loads their inputs.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// DayCell summarizes one calendar day.
type DayCell struct {
	Date            string       `json:"date"`
	CompletedCount  int          `json:"completed_count"`
	TotalHabits     int          `json:"total_habits"`
	CompletionRate  int          `json:"completion_rate"`
	XPEarned        int64        `json:"xp_earned"`
	IsPerfectDay    bool         `json:"is_perfect_day"`
	MoodSummary     *int         `json:"mood_summary"`
	DominantMood    *domain.Mood `json:"dominant_mood"`
	HabitsCompleted []string     `json:"habits_completed"`
}

// MonthStats totals a calendar month.
type MonthStats struct {
	TotalDays             int   `json:"total_days"`
	ActiveDays            int   `json:"active_days"`
	PerfectDays           int   `json:"perfect_days"`
	TotalXP               int64 `json:"total_xp"`
	AverageCompletionRate int   `json:"average_completion_rate"`
}

// Calendar is a month grid.
type Calendar struct {
	Month     string     `json:"month"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Days      []DayCell  `json:"calendar_data"`
	Stats     MonthStats `json:"month_stats"`
}

// PeriodStats totals a weekly or monthly report.
type PeriodStats struct {
	TotalCompleted        int      `json:"total_completed"`
	TotalXP               int64    `json:"total_xp"`
	AverageCompletionRate float64  `json:"average_completion_rate"`
	PerfectDays           int      `json:"perfect_days"`
	ActiveDays            int      `json:"active_days"`
	BestDay               *DayCell `json:"best_day"`
}

// Period is a weekly or monthly report.
type Period struct {
	Label     string      `json:"label"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Days      []DayCell   `json:"days"`
	Stats     PeriodStats `json:"stats"`
}

// ─── Day cells ──────────────────────────────────────────────────────────────

// Days builds one cell per day in [from, to]. total_habits counts habits
// active on that day; completed_count counts logs with status completed.
func Days(habits []domain.Habit, logs []domain.CompletionLog, from, to time.Time) []DayCell {
	names := make(map[string]string, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Name
	}
	byDay := make(map[time.Time][]domain.CompletionLog)
	for _, l := range logs {
		d := engagement.Day(l.Date)
		byDay[d] = append(byDay[d], l)
	}
	hist := engagement.NewHistory(engagement.Snapshot{
		User:   &domain.User{},
		Habits: habits,
		Logs:   logs,
		Today:  to,
	})

	var cells []DayCell
	engagement.EachDay(from, to, func(day time.Time) {
		c := DayCell{Date: engagement.DayKey(day), HabitsCompleted: []string{}}
		for _, h := range habits {
			if h.ActiveOn(day) {
				c.TotalHabits++
			}
		}
		dayLogs := byDay[day]
		for _, l := range dayLogs {
			c.XPEarned += l.XPEarned
			if l.IsCompleted() {
				c.CompletedCount++
				if n := names[l.HabitID]; n != "" {
					c.HabitsCompleted = append(c.HabitsCompleted, n)
				}
			}
		}
		if c.TotalHabits > 0 {
			c.CompletionRate = int(math.Round(float64(c.CompletedCount) * 100 / float64(c.TotalHabits)))
		}
		c.IsPerfectDay = hist.IsPerfectDay(day)
		c.MoodSummary = moodSummary(dayLogs)
		c.DominantMood = dominantMood(dayLogs)
		sort.Strings(c.HabitsCompleted)
		cells = append(cells, c)
	})
	return cells
}

// moodSummary is the rounded mean mood score (1..5), nil without moods.
func moodSummary(logs []domain.CompletionLog) *int {
	sum, n := 0, 0
	for _, l := range logs {
		if l.Mood != nil {
			sum += l.Mood.Score()
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := int(math.Round(float64(sum) / float64(n)))
	return &v
}

// dominantMood is the most frequent mood. Ties go to the better mood.
func dominantMood(logs []domain.CompletionLog) *domain.Mood {
	counts := make(map[domain.Mood]int)
	for _, l := range logs {
		if l.Mood != nil {
			counts[*l.Mood]++
		}
	}
	var best *domain.Mood
	bestN := 0
	for i := len(domain.Moods) - 1; i >= 0; i-- {
		m := domain.Moods[i]
		if counts[m] > bestN {
			best, bestN = &m, counts[m]
		}
	}
	return best
}

// ─── Builders ───────────────────────────────────────────────────────────────

// BuildCalendar builds the month grid containing month.
func BuildCalendar(habits []domain.Habit, logs []domain.CompletionLog, month time.Time) Calendar {
	from, to := engagement.StartOfMonth(month), engagement.EndOfMonth(month)
	days := Days(habits, logs, from, to)

	logged := make(map[string]bool, len(logs))
	for _, l := range logs {
		logged[engagement.DayKey(l.Date)] = true
	}

	stats := MonthStats{TotalDays: len(days)}
	completed := 0
	for _, d := range days {
		if logged[d.Date] {
			stats.ActiveDays++
		}
		if d.IsPerfectDay {
			stats.PerfectDays++
		}
		stats.TotalXP += d.XPEarned
		completed += d.CompletedCount
	}
	active := 0
	for _, h := range habits {
		if h.IsActive {
			active++
		}
	}
	if possible := active * len(days); possible > 0 {
		stats.AverageCompletionRate = int(math.Round(float64(completed) * 100 / float64(possible)))
	}

	return Calendar{
		Month:     from.Format("January 2006"),
		StartDate: engagement.DayKey(from),
		EndDate:   engagement.DayKey(to),
		Days:      days,
		Stats:     stats,
	}
}

// BuildPeriod builds a report over [from, to].
func BuildPeriod(label string, habits []domain.Habit, logs []domain.CompletionLog, from, to time.Time) Period {
	days := Days(habits, logs, from, to)
	return Period{
		Label:     label,
		StartDate: engagement.DayKey(engagement.Day(from)),
		EndDate:   engagement.DayKey(engagement.Day(to)),
		Days:      days,
		Stats:     periodStats(days),
	}
}

// periodStats averages the daily rates. best_day is the earliest day with
// the highest completion rate.
func periodStats(days []DayCell) PeriodStats {
	var s PeriodStats
	if len(days) == 0 {
		return s
	}
	rates := 0
	for i := range days {
		d := &days[i]
		s.TotalCompleted += d.CompletedCount
		s.TotalXP += d.XPEarned
		rates += d.CompletionRate
		if d.IsPerfectDay {
			s.PerfectDays++
		}
		if d.CompletedCount > 0 {
			s.ActiveDays++
		}
		if s.BestDay == nil || d.CompletionRate > s.BestDay.CompletionRate {
			s.BestDay = d
		}
	}
	s.AverageCompletionRate = round1(float64(rates) / float64(len(days)))
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// ─── Overview ───────────────────────────────────────────────────────────────

// LifetimeStats totals everything a user has done.
type LifetimeStats struct {
	TotalDaysTracked int   `json:"total_days_tracked"`
	TotalCompletions int   `json:"total_completions"`
	TotalXPEarned    int64 `json:"total_xp_earned"`
	CurrentStreak    int   `json:"current_streak"`
	LongestStreak    int   `json:"longest_streak"`
	HabitsCreated    int   `json:"habits_created"`
	BadgesEarned     int   `json:"badges_earned"`
	TotalCoins       int64 `json:"total_coins"`
}

// HabitPerformance is one habit's success record.
type HabitPerformance struct {
	HabitID          string            `json:"habit_id"`
	HabitName        string            `json:"habit_name"`
	Type             domain.HabitType  `json:"type"`
	Category         string            `json:"category,omitempty"`
	Difficulty       domain.Difficulty `json:"difficulty"`
	SuccessRate      int               `json:"success_rate"`
	CurrentStreak    int               `json:"current_streak"`
	LongestStreak    int               `json:"longest_streak"`
	TotalCompletions int               `json:"total_completions"`
	TotalLogs        int               `json:"total_logs"`
}

// MoodStats counts moods across all logs.
type MoodStats struct {
	Distribution map[domain.Mood]int `json:"mood_distribution"`
	AverageMood  *float64            `json:"average_mood"`
}

// Overview is the lifetime dashboard.
type Overview struct {
	Lifetime    LifetimeStats      `json:"lifetime_stats"`
	Performance []HabitPerformance `json:"habit_performance"`
	Mood        MoodStats          `json:"mood_analytics"`
}

// BuildOverview summarizes a user's full history. Streaks count full
// completions of active habits up to today.
func BuildOverview(u domain.User, habits []domain.Habit, logs []domain.CompletionLog, badges int, today time.Time) Overview {
	o := Overview{
		Lifetime: LifetimeStats{
			TotalXPEarned: u.TotalXP,
			HabitsCreated: len(habits),
			BadgesEarned:  badges,
			TotalCoins:    u.Coins,
		},
		Performance: make([]HabitPerformance, 0, len(habits)),
		Mood:        MoodStats{Distribution: make(map[domain.Mood]int)},
	}

	active := make(map[string]bool, len(habits))
	perHabit := make(map[string]*HabitPerformance, len(habits))
	for _, h := range habits {
		active[h.ID] = h.IsActive
		o.Performance = append(o.Performance, HabitPerformance{
			HabitID:       h.ID,
			HabitName:     h.Name,
			Type:          h.Type,
			Category:      h.Category,
			Difficulty:    h.Difficulty,
			CurrentStreak: h.CurrentStreak,
			LongestStreak: h.LongestStreak,
		})
	}
	for i := range o.Performance {
		perHabit[o.Performance[i].HabitID] = &o.Performance[i]
	}

	days := make(map[time.Time]struct{})
	var full []domain.CompletionLog
	moodSum := 0
	for _, l := range logs {
		days[engagement.Day(l.Date)] = struct{}{}
		if p := perHabit[l.HabitID]; p != nil {
			p.TotalLogs++
			if l.IsCompleted() {
				p.TotalCompletions++
			}
		}
		if l.IsCompleted() {
			o.Lifetime.TotalCompletions++
		}
		if active[l.HabitID] && l.IsFullCompletion() {
			full = append(full, l)
		}
		if l.Mood != nil {
			o.Mood.Distribution[*l.Mood]++
			moodSum += l.Mood.Score()
		}
	}
	o.Lifetime.TotalDaysTracked = len(days)

	streaks := engagement.CalculateStreaks(engagement.FullCompletionDates(full), today)
	o.Lifetime.CurrentStreak = streaks.Current
	o.Lifetime.LongestStreak = streaks.Longest

	for i := range o.Performance {
		p := &o.Performance[i]
		if p.TotalLogs > 0 {
			p.SuccessRate = int(math.Round(float64(p.TotalCompletions) * 100 / float64(p.TotalLogs)))
		}
	}

	if n := moodCount(o.Mood.Distribution); n > 0 {
		avg := round1(float64(moodSum) / float64(n))
		o.Mood.AverageMood = &avg
	}
	return o
}

func moodCount(m map[domain.Mood]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// ─── Quick stats ────────────────────────────────────────────────────────────

// recentLogs is how many logs HabitStats returns.
const recentLogs = 10

// Standing is one leaderboard row.
type Standing struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Level     int    `json:"level"`
	CurrentXP int64  `json:"current_xp"`
	TotalXP   int64  `json:"total_xp"`
	Badges    int    `json:"badges"`
}

// BuildLeaderboard ranks rows already ordered by the store.
func BuildLeaderboard(rows []sqlite.Standing) []Standing {
	out := make([]Standing, 0, len(rows))
	for i, r := range rows {
		out = append(out, Standing{
			Rank:      i + 1,
			UserID:    r.User.ID,
			Name:      r.User.Name,
			Level:     r.User.Level,
			CurrentXP: r.User.CurrentXP,
			TotalXP:   r.User.TotalXP,
			Badges:    r.Badges,
		})
	}
	return out
}

// HabitStats is one habit's lifetime record.
type HabitStats struct {
	Habit         domain.Habit           `json:"habit"`
	TotalLogs     int                    `json:"total_logs"`
	CompletedLogs int                    `json:"completed_logs"`
	SuccessRate   int                    `json:"success_rate"`
	CurrentStreak int                    `json:"current_streak"`
	LongestStreak int                    `json:"longest_streak"`
	TotalXPEarned int64                  `json:"total_xp_earned"`
	AverageMood   *float64               `json:"average_mood"`
	RecentLogs    []domain.CompletionLog `json:"recent_logs"`
}

// BuildHabitStats summarizes the logs of h. Streaks are the stored counters.
func BuildHabitStats(h domain.Habit, logs []domain.CompletionLog) HabitStats {
	st := HabitStats{
		Habit:         h,
		TotalLogs:     len(logs),
		CurrentStreak: h.CurrentStreak,
		LongestStreak: h.LongestStreak,
	}
	moodSum, moods := 0, 0
	for _, l := range logs {
		if l.IsCompleted() {
			st.CompletedLogs++
		}
		st.TotalXPEarned += l.XPEarned
		if l.Mood != nil {
			moodSum += l.Mood.Score()
			moods++
		}
	}
	if st.TotalLogs > 0 {
		st.SuccessRate = int(math.Round(float64(st.CompletedLogs) * 100 / float64(st.TotalLogs)))
	}
	if moods > 0 {
		avg := round1(float64(moodSum) / float64(moods))
		st.AverageMood = &avg
	}

	recent := make([]domain.CompletionLog, len(logs))
	copy(recent, logs)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > recentLogs {
		recent = recent[:recentLogs]
	}
	st.RecentLogs = recent
	return st
}

// TodayStats is the dashboard header for one day.
type TodayStats struct {
	Date            string `json:"date"`
	TotalHabits     int    `json:"total_habits"`
	CompletedHabits int    `json:"completed_habits"`
	CompletionRate  int    `json:"completion_rate"`
	CurrentStreak   int    `json:"current_streak"`
	Level           int    `json:"level"`
	TotalXP         int64  `json:"total_xp"`
	Coins           int64  `json:"coins"`
}

// BuildToday counts the habits due today and how many of them have a
// completed log today. The streak is the user-wide run of full completions
// on active habits.
func BuildToday(u domain.User, habits []domain.Habit, logs []domain.CompletionLog, today time.Time) TodayStats {
	st := TodayStats{
		Date:    engagement.DayKey(today),
		Level:   u.Level,
		TotalXP: u.TotalXP,
		Coins:   u.Coins,
	}
	active := make(map[string]bool, len(habits))
	due := make(map[string]bool, len(habits))
	for _, h := range habits {
		active[h.ID] = h.IsActive
		if h.ActiveOn(today) {
			due[h.ID] = true
			st.TotalHabits++
		}
	}
	var full []domain.CompletionLog
	for _, l := range logs {
		if due[l.HabitID] && engagement.Day(l.Date).Equal(today) && l.IsCompleted() {
			st.CompletedHabits++
		}
		if active[l.HabitID] && l.IsFullCompletion() {
			full = append(full, l)
		}
	}
	if st.TotalHabits > 0 {
		st.CompletionRate = int(math.Round(float64(st.CompletedHabits) * 100 / float64(st.TotalHabits)))
	}
	st.CurrentStreak = engagement.CalculateStreaks(engagement.FullCompletionDates(full), today).Current
	return st
}
