package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/app/report"
	"github.com/habitforge/habitforge/internal/domain"
)

func init() {
	reportMonthlyCmd.Flags().IntVar(&reportYear, "year", 0, "Year (default current)")
	reportMonthlyCmd.Flags().IntVar(&reportMonth, "month", 0, "Month 1-12 (default current)")
	reportCmd.AddCommand(reportTodayCmd, reportWeeklyCmd, reportMonthlyCmd, reportOverviewCmd)
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", report.DefaultLeaderboardSize, "Number of users to show")
	rootCmd.AddCommand(reportCmd, leaderboardCmd)
}

var (
	reportYear       int
	reportMonth      int
	leaderboardLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Progress reports",
}

var reportTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Habits done today and the running streak",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		st, err := d.Reports.Today(context.Background(), id)
		if err != nil {
			return err
		}
		printf(cmd, "%s: %d/%d habits done (%d%%)\n", st.Date, st.CompletedHabits, st.TotalHabits, st.CompletionRate)
		printf(cmd, "Streak %d days, level %d, %s XP, %s coins\n",
			st.CurrentStreak, st.Level, xp(st.TotalXP), xp(st.Coins))
		return nil
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "The last seven days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.Reports.Weekly(context.Background(), id)
		if err != nil {
			return err
		}
		return printPeriod(cmd, p)
	},
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "One calendar month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		now := d.Clock()
		year, month := reportYear, reportMonth
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
		p, err := d.Reports.Monthly(context.Background(), id, year, month)
		if err != nil {
			return err
		}
		return printPeriod(cmd, p)
	},
}

func printPeriod(cmd *cobra.Command, p report.Period) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", p.Label)

	w := newTable(cmd)
	fmt.Fprintln(w, "DATE\tDONE\tRATE\tXP\tMOOD")
	for _, c := range p.Days {
		mark := ""
		if c.IsPerfectDay {
			mark = " *"
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%d%%%s\t%s\t%s\n",
			c.Date, c.CompletedCount, c.TotalHabits, c.CompletionRate, mark,
			xp(c.XPEarned), moodLabel(c.DominantMood))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := p.Stats
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Completed %d, earned %s XP, average rate %.1f%%\n",
		s.TotalCompleted, xp(s.TotalXP), s.AverageCompletionRate)
	fmt.Fprintf(out, "Active days %d, perfect days %d\n", s.ActiveDays, s.PerfectDays)
	if s.BestDay != nil {
		fmt.Fprintf(out, "Best day %s (%d%%)\n", s.BestDay.Date, s.BestDay.CompletionRate)
	}
	return nil
}

func moodLabel(m *domain.Mood) string {
	if m == nil {
		return "-"
	}
	return string(*m)
}

var reportOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Lifetime totals, habit performance and mood",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		o, err := d.Reports.Overview(context.Background(), id)
		if err != nil {
			return err
		}
		return printOverview(cmd, o)
	},
}

func printOverview(cmd *cobra.Command, o report.Overview) error {
	out := cmd.OutOrStdout()
	l := o.Lifetime

	w := newTable(cmd)
	fmt.Fprintf(w, "Days tracked:\t%d\n", l.TotalDaysTracked)
	fmt.Fprintf(w, "Completions:\t%s\n", xp(int64(l.TotalCompletions)))
	fmt.Fprintf(w, "XP earned:\t%s\n", xp(l.TotalXPEarned))
	fmt.Fprintf(w, "Coins:\t%s\n", xp(l.TotalCoins))
	fmt.Fprintf(w, "Streak:\t%d (best %d)\n", l.CurrentStreak, l.LongestStreak)
	fmt.Fprintf(w, "Habits:\t%d\n", l.HabitsCreated)
	fmt.Fprintf(w, "Badges:\t%d\n", l.BadgesEarned)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(o.Performance) > 0 {
		fmt.Fprintln(out)
		w = newTable(cmd)
		fmt.Fprintln(w, "HABIT\tTYPE\tSUCCESS\tSTREAK\tBEST\tDONE")
		for _, h := range o.Performance {
			fmt.Fprintf(w, "%s\t%s\t%d%%\t%d\t%d\t%d/%d\n",
				h.HabitName, h.Type, h.SuccessRate, h.CurrentStreak, h.LongestStreak,
				h.TotalCompletions, h.TotalLogs)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	printMoods(out, o.Mood)
	return nil
}

func printMoods(out io.Writer, m report.MoodStats) {
	if m.AverageMood == nil {
		return
	}
	moods := make([]domain.Mood, 0, len(m.Distribution))
	for mood := range m.Distribution {
		moods = append(moods, mood)
	}
	sort.Slice(moods, func(i, j int) bool { return moods[i].Score() > moods[j].Score() })

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Average mood %.1f/5:", *m.AverageMood)
	for _, mood := range moods {
		fmt.Fprintf(out, " %s=%d", mood, m.Distribution[mood])
	}
	fmt.Fprintln(out)
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Top users by level, XP and badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		board, err := d.Reports.Leaderboard(context.Background(), leaderboardLimit)
		if err != nil {
			return err
		}
		if len(board) == 0 {
			printf(cmd, "No users yet.\n")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "#\tNAME\tLEVEL\tXP\tTOTAL XP\tBADGES")
		for _, st := range board {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%d\n",
				st.Rank, st.Name, st.Level, xp(st.CurrentXP), xp(st.TotalXP), st.Badges)
		}
		return w.Flush()
	},
}
