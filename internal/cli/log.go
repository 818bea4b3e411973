package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

func init() {
	f := logCmd.Flags()
	f.StringVar(&logOpts.date, "date", "", "Day to log, YYYY-MM-DD (default today)")
	f.StringVarP(&logOpts.status, "status", "s", string(domain.StatusCompleted), "completed, partial, skipped or missed")
	f.Float64Var(&logOpts.value, "value", 0, "Completion value between 0 and 1")
	f.StringVar(&logOpts.at, "time", "", "Time completed, HH:MM")
	f.StringVar(&logOpts.mood, "mood", "", "Mood: terrible, bad, neutral, good or excellent")
	f.IntVar(&logOpts.rating, "rating", 0, "Difficulty rating 1-5")
	f.StringVarP(&logOpts.notes, "notes", "n", "", "Notes")
	rootCmd.AddCommand(logCmd)

	lf := logsCmd.Flags()
	lf.StringVar(&logsOpts.habit, "habit", "", "Only logs for this habit id")
	lf.StringVar(&logsOpts.from, "from", "", "First day, YYYY-MM-DD")
	lf.StringVar(&logsOpts.to, "to", "", "Last day, YYYY-MM-DD")
	lf.IntVar(&logsOpts.limit, "limit", 20, "Maximum number of logs")
	lf.StringVar(&logsOpts.habitType, "type", "", "Only logs of good or bad habits")
	lf.StringVar(&logsOpts.category, "category", "", "Only logs of habits in this category")
	lf.StringVar(&logsOpts.mood, "mood", "", "Only logs with this mood")
	lf.Float64Var(&logsOpts.minCompletion, "min-completion", 0, "Only logs with at least this completion value")
	rootCmd.AddCommand(logsCmd)
}

var logOpts struct {
	date, status, at, mood, notes string
	value                         float64
	rating                        int
}

var logsOpts struct {
	habit, from, to           string
	habitType, category, mood string
	limit                     int
	minCompletion             float64
}

var logCmd = &cobra.Command{
	Use:   "log <habit-id>",
	Short: "Record a habit completion and collect XP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		in, err := logInput(cmd, args[0])
		if err != nil {
			return err
		}

		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if in.Date.IsZero() {
			in.Date = d.Clock()
		}
		res, err := d.Logs.Submit(context.Background(), id, in)
		if err != nil {
			return err
		}
		printLogResult(cmd, res)
		return nil
	},
}

func logInput(cmd *cobra.Command, habitID string) (engagement.LogInput, error) {
	status, err := domain.ParseLogStatus(logOpts.status)
	if err != nil {
		return engagement.LogInput{}, err
	}
	in := engagement.LogInput{HabitID: habitID, Status: status, Notes: logOpts.notes}
	if in.Date, err = parseDay("date", logOpts.date); err != nil {
		return in, err
	}
	flags := cmd.Flags()
	if flags.Changed("value") {
		v := logOpts.value
		in.CompletionValue = &v
	}
	if logOpts.at != "" {
		at, err := domain.ParseClockTime(logOpts.at)
		if err != nil {
			return in, err
		}
		in.TimeCompleted = &at
	}
	if logOpts.mood != "" {
		m, err := domain.ParseMood(logOpts.mood)
		if err != nil {
			return in, err
		}
		in.Mood = &m
	}
	if flags.Changed("rating") {
		r := logOpts.rating
		in.DifficultyRating = &r
	}
	return in, nil
}

func printLogResult(cmd *cobra.Command, res engagement.LogResult) {
	if l := res.Log; l != nil {
		printf(cmd, "Logged %s on %s", l.Status, formatDay(l.Date))
		if l.XPEarned > 0 {
			printf(cmd, ": +%s XP", xp(l.XPEarned))
			if l.StreakBonus > 0 {
				printf(cmd, " (streak bonus +%s)", xp(l.StreakBonus))
			}
		}
		printf(cmd, "\n")
	}
	if res.Ledger.LeveledUp() {
		printf(cmd, "Level up! You are now level %d\n", res.Ledger.Level)
	}
	for _, a := range res.Awarded {
		printf(cmd, "Badge unlocked: %s %s (+%s XP, +%s coins)\n",
			a.Badge.Icon, a.Badge.Name, xp(a.Badge.RewardXP), xp(a.Badge.RewardCoins))
	}
	u := res.User
	printf(cmd, "Level %d, %s XP total, %s coins\n", u.Level, xp(u.TotalXP), xp(u.Coins))
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List recent habit logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		f := sqlite.LogFilter{
			HabitID:   logsOpts.habit,
			Limit:     logsOpts.limit,
			HabitType: domain.HabitType(logsOpts.habitType),
			Category:  logsOpts.category,
			Mood:      domain.Mood(logsOpts.mood),
		}
		if cmd.Flags().Changed("min-completion") {
			f.MinCompletion = &logsOpts.minCompletion
		}
		if f.From, err = parseDay("from", logsOpts.from); err != nil {
			return err
		}
		if f.To, err = parseDay("to", logsOpts.to); err != nil {
			return err
		}

		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		logs, err := d.Logs.List(context.Background(), id, f)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			printf(cmd, "No logs found.\n")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "DATE\tHABIT\tSTATUS\tVALUE\tXP\tMOOD\tLOGGED")
		for _, l := range logs {
			mood := "-"
			if l.Mood != nil {
				mood = string(*l.Mood)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
				formatDay(l.Date), l.HabitID, l.Status, l.CompletionValue,
				xp(l.XPEarned), mood, since(l.CreatedAt))
		}
		return w.Flush()
	},
}
