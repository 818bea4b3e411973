package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/domain"
)

func init() {
	f := habitAddCmd.Flags()
	f.StringVar(&habitOpts.typ, "type", "good", "Habit type: good or bad")
	f.StringVar(&habitOpts.frequency, "frequency", "daily", "Target frequency: daily, weekly or monthly")
	f.StringVar(&habitOpts.difficulty, "difficulty", "medium", "Difficulty: easy, medium or hard")
	f.Int64Var(&habitOpts.baseXP, "xp", domain.DefaultBaseXP, "Base XP per completion (5-50)")
	f.StringVar(&habitOpts.category, "category", "", "Category, e.g. morning_routine")
	f.StringVarP(&habitOpts.description, "description", "d", "", "Description")
	f.StringVar(&habitOpts.start, "start", "", "Start date YYYY-MM-DD (default today)")
	f.StringVar(&habitOpts.end, "end", "", "End date YYYY-MM-DD")

	lf := habitListCmd.Flags()
	lf.BoolVar(&habitListOpts.all, "all", false, "Include inactive habits")
	lf.StringVar(&habitListOpts.category, "category", "", "Only habits in this category")
	lf.StringVar(&habitListOpts.typ, "type", "", "Only good or bad habits")
	lf.StringVar(&habitListOpts.difficulty, "difficulty", "", "Only habits of this difficulty")

	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitStatsCmd, habitRmCmd)
	rootCmd.AddCommand(habitCmd)
}

var habitOpts struct {
	typ, frequency, difficulty string
	baseXP                     int64
	category, description      string
	start, end                 string
}

var habitListOpts struct {
	all                       bool
	category, typ, difficulty string
}

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := currentUser()
		if err != nil {
			return err
		}
		in := engagement.HabitInput{
			Name:        strings.Join(args, " "),
			Description: habitOpts.description,
			Category:    habitOpts.category,
			Type:        domain.HabitType(habitOpts.typ),
			Frequency:   domain.Frequency(habitOpts.frequency),
			Difficulty:  domain.Difficulty(habitOpts.difficulty),
			BaseXP:      habitOpts.baseXP,
		}
		if in.StartDate, err = parseDay("start", habitOpts.start); err != nil {
			return err
		}
		if habitOpts.end != "" {
			end, err := parseDay("end", habitOpts.end)
			if err != nil {
				return err
			}
			in.EndDate = &end
		}

		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		h, err := d.Habits.Create(context.Background(), id, in)
		if err != nil {
			return err
		}
		printf(cmd, "Created %s habit %q (%s), %d XP per completion\n", h.Type, h.Name, h.ID, h.BaseXP)
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits with their streaks",
	Args:    cobra.NoArgs,
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

		habits, err := d.Habits.List(context.Background(), id, engagement.HabitFilter{
			ActiveOnly: !habitListOpts.all,
			Category:   habitListOpts.category,
			Type:       domain.HabitType(habitListOpts.typ),
			Difficulty: domain.Difficulty(habitListOpts.difficulty),
		})
		if err != nil {
			return err
		}
		if len(habits) == 0 {
			printf(cmd, "No habits yet. Add one with: habitforge habit add <name>\n")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tFREQUENCY\tXP\tSTREAK\tBEST\tDONE")
		for _, h := range habits {
			name := h.Name
			if !h.IsActive {
				name += " (inactive)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				h.ID, name, h.Type, h.Frequency, h.BaseXP,
				h.CurrentStreak, h.LongestStreak, h.TotalCompletions)
		}
		return w.Flush()
	},
}

var habitStatsCmd = &cobra.Command{
	Use:   "stats <habit-id>",
	Short: "Show a habit's success rate, XP and recent logs",
	Args:  cobra.ExactArgs(1),
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

		st, err := d.Reports.HabitStats(context.Background(), id, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s, %s)\n\n", st.Habit.Name, st.Habit.Type, st.Habit.Difficulty)
		w := newTable(cmd)
		fmt.Fprintf(w, "Logs:\t%d completed of %d\n", st.CompletedLogs, st.TotalLogs)
		fmt.Fprintf(w, "Success:\t%d%%\n", st.SuccessRate)
		fmt.Fprintf(w, "Streak:\t%d (best %d)\n", st.CurrentStreak, st.LongestStreak)
		fmt.Fprintf(w, "XP earned:\t%s\n", xp(st.TotalXPEarned))
		if st.AverageMood != nil {
			fmt.Fprintf(w, "Mood:\t%.1f/5\n", *st.AverageMood)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(st.RecentLogs) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		w = newTable(cmd)
		fmt.Fprintln(w, "DATE\tSTATUS\tVALUE\tXP")
		for _, l := range st.RecentLogs {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", formatDay(l.Date), l.Status, l.CompletionValue, xp(l.XPEarned))
		}
		return w.Flush()
	},
}

var habitRmCmd = &cobra.Command{
	Use:     "rm <habit-id>",
	Aliases: []string{"remove"},
	Short:   "Delete a habit and its logs",
	Args:    cobra.ExactArgs(1),
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

		if err := d.Habits.Delete(context.Background(), id, args[0]); err != nil {
			return err
		}
		printf(cmd, "Deleted habit %s\n", args[0])
		return nil
	},
}
