package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/app/engagement"
)

func init() {
	badgesCmd.Flags().BoolVar(&badgesUnlocked, "unlocked", false, "Only show unlocked badges")
	badgesCmd.AddCommand(badgesCheckCmd)
	rootCmd.AddCommand(badgesCmd, claimCmd)
}

var badgesUnlocked bool

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List badges with unlock state and progress",
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

		var badges []engagement.BadgeStatus
		if badgesUnlocked {
			badges, err = d.Badges.Unlocked(context.Background(), id)
		} else {
			badges, err = d.Badges.List(context.Background(), id)
		}
		if err != nil {
			return err
		}
		if len(badges) == 0 {
			printf(cmd, "No badges.\n")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tBADGE\tCATEGORY\tREWARD\tPROGRESS\tUNLOCKED")
		for _, b := range badges {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s XP / %s coins\t%s\t%s\n",
				b.ID, b.Icon, b.Name, b.Category, xp(b.RewardXP), xp(b.RewardCoins),
				badgeProgress(b), badgeUnlocked(b))
		}
		return w.Flush()
	},
}

func badgeProgress(b engagement.BadgeStatus) string {
	if b.Progress == nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", *b.Progress)
}

func badgeUnlocked(b engagement.BadgeStatus) string {
	if b.UnlockedAt == nil {
		return "no"
	}
	return since(*b.UnlockedAt)
}

var badgesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate every locked badge and unlock the ones earned",
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

		res, err := d.Badges.Check(context.Background(), id)
		if err != nil {
			return err
		}
		if len(res.Awarded) == 0 {
			printf(cmd, "No new badges.\n")
			return nil
		}
		for _, a := range res.Awarded {
			printf(cmd, "Badge unlocked: %s %s (+%s XP, +%s coins)\n",
				a.Badge.Icon, a.Badge.Name, xp(a.Badge.RewardXP), xp(a.Badge.RewardCoins))
		}
		return nil
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim <badge-id>",
	Short: "Claim a badge whose requirement is met",
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

		res, err := d.Badges.Claim(context.Background(), id, args[0])
		if err != nil {
			return err
		}
		if res.Outcome != engagement.ClaimGranted {
			return res.Outcome.Err()
		}
		a := res.Award
		printf(cmd, "Claimed %s %s (+%s XP, +%s coins)\n",
			a.Badge.Icon, a.Badge.Name, xp(a.Badge.RewardXP), xp(a.Badge.RewardCoins))
		for _, c := range res.Cascade {
			printf(cmd, "Badge unlocked: %s %s\n", c.Badge.Icon, c.Badge.Name)
		}
		return nil
	},
}
