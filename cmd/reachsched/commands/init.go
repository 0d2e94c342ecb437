package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		dataDir string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a reachsched workspace",
		Long: `Initialize a workspace with a run database and a configuration file.

The configuration file records the database path so that every later
explore run is recorded and can be inspected with "reachsched history".`,
		Example: `  # Initialize in the current directory
  reachsched init

  # Initialize with a custom config path
  reachsched init --config /etc/reachsched/config.yaml`,
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := configPath
			if path == "" {
				path = "./reachsched.yaml"
			}
			if dataDir == "" {
				dataDir = filepath.Join(filepath.Dir(path), "data")
			}

			log.Info().
				Str("config", path).
				Str("data_dir", dataDir).
				Msg("Initializing workspace")

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}

			if err := os.MkdirAll(dataDir, 0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dataDir, err)
			}
			fmt.Printf("✓ Created directory: %s\n", dataDir)

			dbPath := filepath.Join(dataDir, "runs.db")
			store, err := openStore(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Printf("✓ Initialized SQLite database: %s\n", dbPath)

			cfg.Store.Path = dbPath
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("✓ Created config file: %s\n", path)

			fmt.Printf("\nNext steps:\n")
			fmt.Printf("  1. Explore a program:\n")
			fmt.Printf("     reachsched explore --config %s program.yaml\n\n", path)
			fmt.Printf("  2. Inspect recorded runs:\n")
			fmt.Printf("     reachsched history --config %s\n\n", path)

			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (default: next to the config file)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
