package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kleereach/reachsched/pkg/explorer"
	"github.com/kleereach/reachsched/pkg/searcher"
	"github.com/kleereach/reachsched/pkg/stores"
	"github.com/kleereach/reachsched/pkg/telemetry"
)

func newExploreCommand() *cobra.Command {
	var (
		strategy        string
		distanceFile    string
		strictDistances bool
		maxSteps        int
		stopAtTarget    bool
		recordPath      string
		runID           string
		debugWorklist   bool
		metricsAddr     string
		traceSpans      bool
	)

	cmd := &cobra.Command{
		Use:   "explore <program.yaml>",
		Short: "Explore a simulated program towards its target",
		Long: `Explore a simulated program, selecting states with the configured strategy.

Each step selects the most promising state, executes one instruction of it,
and reports forks and terminations back to the searcher. The run ends when
every state terminated, when the target is reached (unless --stop-at-target
is false), or after --max-steps steps.

Without a distance file the distances are computed from the program itself.`,
		Example: `  # Explore with A*2 and the program's own distances
  reachsched explore --strategy astar2 loop.yaml

  # Use a precomputed distance file and record the run
  reachsched explore --distances loop.dist --record runs.db loop.yaml

  # Dump the worklist on every selection and serve metrics
  reachsched explore --debug-worklist --metrics-addr :9090 loop.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			program, err := explorer.LoadProgram(args[0])
			if err != nil {
				return err
			}

			scfg := cfg.Searcher
			if flags.Changed("strategy") {
				scfg.Strategy = searcher.StrategyKind(strategy)
			}
			if flags.Changed("distances") {
				scfg.DistanceFile = distanceFile
			}
			if flags.Changed("strict-distances") {
				scfg.StrictDistances = strictDistances
			}
			if flags.Changed("debug-worklist") {
				scfg.DebugWorklist = debugWorklist
			}

			opts := explorer.Options{
				MaxSteps:     cfg.Exploration.MaxSteps,
				StopAtTarget: cfg.Exploration.StopAtTarget,
				RunID:        runID,
			}
			if flags.Changed("max-steps") {
				opts.MaxSteps = maxSteps
			}
			if flags.Changed("stop-at-target") {
				opts.StopAtTarget = stopAtTarget
			}

			tcfg := cfg.Telemetry
			if metricsAddr != "" {
				tcfg.Metrics.Enabled = true
				tcfg.Metrics.ListenAddress = metricsAddr
			}
			if traceSpans {
				tcfg.Tracing.Enabled = true
				tcfg.Tracing.Exporter = "stdout"
			}

			tel, err := telemetry.NewTelemetry(&tcfg)
			if err != nil {
				return fmt.Errorf("failed to set up telemetry: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tel.Shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("Telemetry shutdown failed")
				}
			}()
			if err := tel.StartMetricsServer(); err != nil {
				return fmt.Errorf("failed to start metrics server: %w", err)
			}

			options := []explorer.Option{
				explorer.WithLogger(tel.Logger.NewComponentLogger("explorer")),
				explorer.WithMetrics(tel.Metrics),
				explorer.WithTracer(tel.Tracer),
			}
			if scfg.DistanceFile == "" {
				log.Info().Str("program", program.Name).Msg("No distance file given, computing distances from the program")
				options = append(options, explorer.WithDistanceMap(program.Distances()))
			}

			if !flags.Changed("record") {
				recordPath = cfg.Store.Path
			}
			if recordPath != "" {
				store, err := openStore(ctx, recordPath)
				if err != nil {
					return err
				}
				defer store.Close()
				options = append(options, explorer.WithRecorder(store))
			}

			x, err := explorer.New(program, scfg, options...)
			if err != nil {
				return err
			}

			res, err := x.Run(ctx, opts)
			if res != nil {
				if perr := printResult(res); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(searcher.StrategyAStar), "search strategy (astar, astar2)")
	cmd.Flags().StringVarP(&distanceFile, "distances", "d", "", "distance file path")
	cmd.Flags().BoolVar(&strictDistances, "strict-distances", false, "fail on malformed distance records")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 10000, "maximum number of steps")
	cmd.Flags().BoolVar(&stopAtTarget, "stop-at-target", true, "stop when the target is reached")
	cmd.Flags().StringVar(&recordPath, "record", "", "record the run into this SQLite database")
	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default: random UUID)")
	cmd.Flags().BoolVar(&debugWorklist, "debug-worklist", false, "dump the worklist on every selection")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&traceSpans, "trace", false, "print OpenTelemetry spans to stdout")

	return cmd
}

func printResult(res *explorer.Result) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("Run:            %s\n", res.RunID)
	fmt.Printf("Outcome:        %s\n", res.Outcome)
	fmt.Printf("Steps:          %d\n", res.Steps)
	if res.TargetReached {
		fmt.Printf("Target reached: step %d\n", res.TargetStep)
	} else {
		fmt.Printf("Target reached: no\n")
	}
	fmt.Printf("Peak frontier:  %d\n", res.PeakFrontier)
	fmt.Printf("Duration:       %s\n", res.Duration)
	return nil
}

func openStore(ctx context.Context, path string) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:        path,
		BusyTimeout: time.Duration(cfg.Store.BusyTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
