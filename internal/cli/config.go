package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/habitforge/habitforge/internal/daemon"
)

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to $HABITFORGE_HOME/config.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := daemon.ConfigPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := daemon.SaveConfig(daemon.DefaultConfig()); err != nil {
			return err
		}
		printf(cmd, "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		w := newTable(cmd)
		fmt.Fprintf(w, "config\t%s\n", daemon.ConfigPath())
		fmt.Fprintf(w, "api\t%s:%d (timeout %s)\n", cfg.API.Host, cfg.API.Port, cfg.API.RequestTimeout)
		fmt.Fprintf(w, "database\t%s\n", cfg.Database.Dir)
		fmt.Fprintf(w, "log\t%s (%s)\n", cfg.Logging.File, cfg.Logging.Level)
		fmt.Fprintf(w, "timezone\t%s\n", cfg.Engine.Timezone)
		fmt.Fprintf(w, "prometheus\t%t\n", cfg.Telemetry.Prometheus)
		return w.Flush()
	},
}
