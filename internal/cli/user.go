package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/app/engagement"
)

func init() {
	userCmd.AddCommand(userCreateCmd, userShowCmd, userListCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a user",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.Users.Create(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printf(cmd, "Created user %s (%s)\n", u.Name, u.ID)
		printf(cmd, "  export %s=%s\n", EnvUser, u.ID)
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the acting user's level, XP and coins",
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

		u, err := d.Users.Get(context.Background(), id)
		if err != nil {
			return err
		}
		p := engagement.ProgressFor(*u)

		w := newTable(cmd)
		fmt.Fprintf(w, "User:\t%s (%s)\n", u.Name, u.ID)
		fmt.Fprintf(w, "Level:\t%d\n", p.Level)
		fmt.Fprintf(w, "XP:\t%s / %s (%.1f%%, %s to next)\n",
			xp(p.CurrentXP), xp(p.Threshold), p.ProgressPct, xp(p.XPToNext))
		fmt.Fprintf(w, "Total XP:\t%s\n", xp(p.TotalXP))
		fmt.Fprintf(w, "Coins:\t%s\n", xp(p.Coins))
		fmt.Fprintf(w, "Joined:\t%s\n", since(u.CreatedAt))
		return w.Flush()
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		users, err := d.Users.List(context.Background())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			printf(cmd, "No users yet. Create one with: habitforge user create <name>\n")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tTOTAL XP\tCOINS")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", u.ID, u.Name, u.Level, xp(u.TotalXP), xp(u.Coins))
		}
		return w.Flush()
	},
}
