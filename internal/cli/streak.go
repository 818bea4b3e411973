package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	streakCmd.Flags().StringVar(&streakHabit, "habit", "", "Show one habit's streak history")
	rootCmd.AddCommand(streakCmd)
}

var streakHabit string

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show current and longest streaks",
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
		ctx := context.Background()

		if streakHabit != "" {
			st, err := d.Streaks.ForHabit(ctx, id, streakHabit)
			if err != nil {
				return err
			}
			printf(cmd, "Habit %s: current %d, longest %d\n", st.HabitID, st.Current, st.Longest)
			if len(st.Runs) == 0 {
				return nil
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "FROM\tTO\tDAYS")
			for _, r := range st.Runs {
				fmt.Fprintf(w, "%s\t%s\t%d\n", formatDay(r.Start), formatDay(r.End), r.Length)
			}
			return w.Flush()
		}

		st, err := d.Streaks.ForUser(ctx, id)
		if err != nil {
			return err
		}
		w := newTable(cmd)
		fmt.Fprintf(w, "Current streak:\t%d days\n", st.Current)
		fmt.Fprintf(w, "Longest streak:\t%d days\n", st.Longest)
		fmt.Fprintf(w, "Completions:\t%d over %d active days\n", st.TotalCompleted, st.ActiveDays)
		return w.Flush()
	},
}
