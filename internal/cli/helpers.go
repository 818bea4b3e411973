package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/daemon"
	"github.com/habitforge/habitforge/internal/domain"
)

var errNoUser = errors.New("no user selected: pass --user or set " + EnvUser)

// openDaemon wires the services without starting the API. Log lines go to
// the log file only so they do not interleave with command output.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Logging.Quiet = true
	return daemon.NewWithConfig(cfg)
}

// currentUser resolves the acting user id.
func currentUser() (string, error) {
	if id := strings.TrimSpace(userFlag); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(os.Getenv(EnvUser)); id != "" {
		return id, nil
	}
	return "", errNoUser
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// xp formats an XP or coin amount with thousands separators.
func xp(n int64) string {
	return humanize.Comma(n)
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// since renders a timestamp relative to now ("3 days ago").
func since(t time.Time) string {
	return humanize.Time(t)
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}
