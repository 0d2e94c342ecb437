package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kleereach/reachsched/pkg/explorer"
	"github.com/kleereach/reachsched/pkg/searcher"
)

func newDistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dist",
		Short: "Work with distance files",
		Long: `Generate and check distance files.

A distance file has one "<location>:<distance>:" record per line giving the
number of steps from the location to the target.`,
	}

	cmd.AddCommand(newDistGenerateCommand())
	cmd.AddCommand(newDistLintCommand())

	return cmd
}

func newDistGenerateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "generate <program.yaml>",
		Short:   "Write the distance file of a program",
		Example: `  reachsched dist generate loop.yaml -o loop.dist`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := explorer.LoadProgram(args[0])
			if err != nil {
				return err
			}

			distances := program.Distances()

			if output == "" {
				if _, err := distances.WriteTo(os.Stdout); err != nil {
					return fmt.Errorf("failed to write distances: %w", err)
				}
				return nil
			}

			if err := writeDistanceFile(output, distances); err != nil {
				return err
			}

			log.Info().
				Str("program", program.Name).
				Str("output", output).
				Int("records", distances.Len()).
				Msg("Distance file written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// writeDistanceFile writes d to path. The close error is reported since it
// may be the first sign of a failed write.
func writeDistanceFile(path string, d *searcher.DistanceMap) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := d.WriteTo(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write distances: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// lintReport is the printed form of a distance file check.
type lintReport struct {
	Path       string                     `json:"path"`
	Records    int                        `json:"records"`
	Lines      int                        `json:"lines"`
	Duplicates int                        `json:"duplicates"`
	Malformed  []searcher.MalformedRecord `json:"malformed,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

func newDistLintCommand() *cobra.Command {
	var (
		strict bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "lint <file>",
		Short: "Check a distance file",
		Long: `Parse a distance file and report how many records it holds, how many
lines were duplicates, and which lines are malformed.

With --watch the file is checked again every time it changes.`,
		Example: `  # Fail on the first malformed line
  reachsched dist lint --strict loop.dist

  # Re-check while the file is regenerated
  reachsched dist lint --watch loop.dist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			opts := searcher.DistanceOptions{Strict: strict}
			logger := log.Logger.With().Str("component", "dist-lint").Logger()

			if watch {
				return searcher.WatchDistances(cmd.Context(), path, opts, logger,
					func(d *searcher.DistanceMap, report *searcher.DistanceReport, err error) {
						if perr := printLint(path, d, report, err); perr != nil {
							log.Error().Err(perr).Msg("Failed to print lint report")
						}
					})
			}

			d, report, err := searcher.ReadDistanceFile(path, opts, logger)
			if perr := printLint(path, d, report, err); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}
			if len(report.Malformed) > 0 {
				return fmt.Errorf("%d malformed records in %s", len(report.Malformed), path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "stop at the first malformed record")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "check again whenever the file changes")

	return cmd
}

func printLint(path string, d *searcher.DistanceMap, report *searcher.DistanceReport, err error) error {
	out := lintReport{Path: path, Records: d.Len()}
	if report != nil {
		out.Lines = report.Lines
		out.Duplicates = report.Duplicates
		out.Malformed = report.Malformed
	}
	if err != nil {
		out.Error = err.Error()
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if err != nil {
		fmt.Printf("%s: %v\n", path, err)
		return nil
	}
	fmt.Printf("%s: %d records, %d lines, %d duplicates, %d malformed\n",
		path, out.Records, out.Lines, out.Duplicates, len(out.Malformed))
	for _, m := range out.Malformed {
		fmt.Printf("  line %d: %s (%q)\n", m.Line, m.Reason, m.Text)
	}
	return nil
}
