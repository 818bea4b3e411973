// Package cli implements the habitforge command-line interface using Cobra.
// Each subcommand opens the local store directly; only serve starts the API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EnvUser selects the acting user when --user is not given.
const EnvUser = "HABITFORGE_USER"

var userFlag string

var rootCmd = &cobra.Command{
	Use:   "habitforge",
	Short: "habitforge — gamified habit tracking",
	Long: `habitforge tracks habits and turns them into a game.
Log completions to earn XP, level up, keep streaks alive and unlock badges.

Run "habitforge serve" for the HTTP API, or use the subcommands directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Acting user id (default $"+EnvUser+")")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
