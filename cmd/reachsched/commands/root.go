package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kleereach/reachsched/pkg/config"
	"github.com/kleereach/reachsched/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	logLevel   string
	jsonOutput bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reachsched",
		Short: "reachsched - goal-directed state scheduling for program exploration",
		Long: `reachsched selects which execution state to explore next so that exploration
reaches a chosen target location quickly.

Features:
  - A* scheduling by distance to target plus branch depth
  - A*2 scheduling with a logarithmic penalty for revisited locations
  - Distance files in the "<location>:<distance>:" format
  - Simulated programs for experimenting with strategies
  - Run history in SQLite, Prometheus metrics, OpenTelemetry traces`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newExploreCommand())
	rootCmd.AddCommand(newDistCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// skipConfigLoad marks commands that write the config file instead of
// reading it.
const skipConfigLoad = "skip-config-load"

func loadConfig(cmd *cobra.Command) error {
	if configPath == "" || cmd.Annotations[skipConfigLoad] != "" {
		cfg = config.DefaultConfig()
	} else {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
		zerolog.SetGlobalLevel(telemetry.ParseLevel(logLevel))
	}

	return cfg.Telemetry.Validate()
}
