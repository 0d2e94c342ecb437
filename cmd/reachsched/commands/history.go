package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kleereach/reachsched/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded exploration runs",
		Long: `List the runs recorded in the run database, newest first, or print the
selection history of one run.`,
		Example: `  # List the last 20 runs
  reachsched history --db runs.db

  # Print the steps of one run
  reachsched history --db runs.db 6f1c2a4e-0b7d-4b8e-9a51-3c2d1e0f9a87`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if dbPath == "" {
				dbPath = cfg.Store.Path
			}
			if dbPath == "" {
				return errors.New("no run database given (use --db or store.path)")
			}

			store, err := openStore(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 0 {
				runs, err := store.ListRuns(ctx, limit, offset)
				if err != nil {
					return err
				}
				return printRuns(runs)
			}

			run, err := store.GetRun(ctx, args[0])
			if errors.Is(err, stores.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}
			steps, err := store.ListSteps(ctx, run.ID, limit, offset)
			if err != nil {
				return err
			}
			return printSteps(run, steps)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "run database (default: store.path from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	return cmd
}

func printRuns(runs []*stores.Run) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROGRAM\tSTRATEGY\tSTATUS\tOUTCOME\tSTEPS\tTARGET\tSTARTED")
	for _, r := range runs {
		target := "-"
		if r.TargetStep != nil {
			target = strconv.Itoa(*r.TargetStep)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Program, r.Strategy, r.Status, r.Outcome, r.Steps, target,
			r.StartedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func printSteps(run *stores.Run, steps []*stores.Step) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Run   *stores.Run    `json:"run"`
			Steps []*stores.Step `json:"steps"`
		}{run, steps})
	}

	fmt.Printf("Run %s: %s with %s, %s (%s)\n\n", run.ID, run.Program, run.Strategy, run.Outcome, run.Status)
	if run.Error != nil {
		fmt.Printf("Error: %s\n\n", *run.Error)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTATE\tLOCATION\tPRIORITY\tFORKS\tTERMINATED\tFRONTIER\tTARGET")
	for _, s := range steps {
		prio := "+Inf"
		if s.Priority != nil {
			prio = strconv.FormatFloat(*s.Priority, 'g', -1, 64)
		}
		reached := ""
		if s.ReachedTarget {
			reached = "yes"
		}
		fmt.Fprintf(w, "%d\t%d\tl%d\t%s\t%d\t%d\t%d\t%s\n",
			s.Index, s.StateID, s.Location, prio, s.Forks, s.Terminated, s.FrontierSize, reached)
	}
	return w.Flush()
}
