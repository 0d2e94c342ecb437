// Package telemetry provides observability instrumentation for reachsched.
//
// It integrates structured logging (zerolog), tracing (OpenTelemetry) and
// metrics (Prometheus) behind a single Telemetry value built from Config.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	cfg.Metrics.Enabled = true
//	cfg.Metrics.ListenAddress = ":9090"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//	_ = tel.StartMetricsServer()
//
// # Logging
//
// Components take a zerolog.Logger and add their own "component" field:
//
//	logger := tel.Logger.NewComponentLogger("explorer").WithRunID(runID)
//	s, _ := searcher.New(cfg, searcher.WithLogger(logger.Zerolog()))
//
// # Metrics
//
// Metrics methods are safe on a nil *Metrics and on a disabled instance, so
// instrumented code never checks whether metrics are on. Exposed series
// include:
//
//   - reachsched_selections_total{strategy,reachable}
//   - reachsched_selected_priority{strategy}
//   - reachsched_transitions_total{strategy}
//   - reachsched_transition_duration_seconds{strategy}
//   - reachsched_states_added_total / reachsched_states_removed_total
//   - reachsched_frontier_size
//   - reachsched_distance_records
//   - reachsched_runs_completed_total{status} and reachsched_run_steps{status}
//   - reachsched_target_reached_total{strategy}
//   - reachsched_errors_by_class_total / reachsched_errors_by_code_total
//
// # Tracing
//
// The exploration loop opens an "exploration.run" span per run and an
// "exploration.step" span per step. Exporters: stdout (pretty printed JSON),
// otlp (gRPC) and none.
package telemetry
