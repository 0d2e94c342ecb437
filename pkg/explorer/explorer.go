package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kleereach/reachsched/pkg/searcher"
	"github.com/kleereach/reachsched/pkg/stores"
	"github.com/kleereach/reachsched/pkg/telemetry"
)

// stepBatchSize is the number of step records buffered before they are
// handed to the Recorder.
const stepBatchSize = 256

// Outcome tells why a run ended.
type Outcome string

const (
	// OutcomeExhausted means every state terminated.
	OutcomeExhausted Outcome = "exhausted"

	// OutcomeTargetReached means a state executed the target and the run was
	// configured to stop there.
	OutcomeTargetReached Outcome = "target_reached"

	// OutcomeStepLimit means the run hit Options.MaxSteps.
	OutcomeStepLimit Outcome = "step_limit"

	// OutcomeCancelled means the context was cancelled.
	OutcomeCancelled Outcome = "cancelled"

	// OutcomeFailed means the searcher or the engine reported an error.
	OutcomeFailed Outcome = "failed"
)

// Options bounds a run.
type Options struct {
	// MaxSteps cuts the run off after this many steps. Zero means no limit.
	MaxSteps int

	// StopAtTarget ends the run when a state executes the target.
	StopAtTarget bool

	// RunID names the run. A random UUID is used when empty.
	RunID string
}

// Result summarizes a run.
type Result struct {
	RunID   string
	Outcome Outcome

	// Steps is the number of states selected and executed.
	Steps int

	// TargetReached is set when some state executed the target, at step
	// TargetStep (zero based).
	TargetReached bool
	TargetStep    int

	// Selections lists the selected state of every step.
	Selections []searcher.StateID

	// PeakFrontier is the largest frontier seen.
	PeakFrontier int

	Duration time.Duration
}

// Recorder persists runs and their steps. stores.SQLiteStore implements it.
type Recorder interface {
	CreateRun(ctx context.Context, run *stores.Run) error
	AppendSteps(ctx context.Context, steps []*stores.Step) error
	CompleteRun(ctx context.Context, run *stores.Run) error
}

// Explorer drives a Searcher over a simulated Program: select a state,
// execute it, report the forks and terminations back, repeat.
type Explorer struct {
	program   *Program
	config    searcher.Config
	distances *searcher.DistanceMap
	trace     io.Writer

	logger   *telemetry.Logger
	tracer   *telemetry.Tracer
	metrics  *telemetry.Metrics
	recorder Recorder
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLogger sets the logger. Callers usually hand in a component logger;
// every run adds its program and run ID.
func WithLogger(logger *telemetry.Logger) Option {
	return func(x *Explorer) {
		x.logger = logger
	}
}

// WithTracer wraps runs and steps in spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(x *Explorer) {
		x.tracer = t
	}
}

// WithMetrics reports run and searcher activity.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(x *Explorer) {
		x.metrics = m
	}
}

// WithRecorder persists every run.
func WithRecorder(r Recorder) Option {
	return func(x *Explorer) {
		x.recorder = r
	}
}

// WithDistanceMap uses d instead of the distance file of the searcher
// configuration.
func WithDistanceMap(d *searcher.DistanceMap) Option {
	return func(x *Explorer) {
		x.distances = d
	}
}

// WithTraceWriter sets where worklist dumps go.
func WithTraceWriter(w io.Writer) Option {
	return func(x *Explorer) {
		x.trace = w
	}
}

// New creates an Explorer for p. Every Run uses a fresh Searcher built from
// cfg.
func New(p *Program, cfg searcher.Config, options ...Option) (*Explorer, error) {
	if p == nil {
		return nil, fmt.Errorf("program is required")
	}
	if _, err := searcher.NewStrategy(cfg.Strategy); err != nil {
		return nil, fmt.Errorf("invalid searcher configuration: %w", err)
	}

	x := &Explorer{
		program: p,
		config:  cfg,
		logger:  telemetry.NewLoggerFrom(zerolog.Nop()),
		tracer:  telemetry.NoopTracer(),
	}
	for _, opt := range options {
		opt(x)
	}
	if x.logger == nil {
		x.logger = telemetry.NewLoggerFrom(zerolog.Nop())
	}
	x.logger = x.logger.WithProgram(p.Name)

	return x, nil
}

func (x *Explorer) newSearcher(logger zerolog.Logger) (*searcher.Searcher, error) {
	opts := []searcher.Option{
		searcher.WithLogger(logger),
		searcher.WithMetrics(x.metrics),
	}
	if x.distances != nil {
		opts = append(opts, searcher.WithDistances(x.distances))
	}
	if x.trace != nil {
		opts = append(opts, searcher.WithTraceWriter(x.trace))
	}
	return searcher.New(x.config, opts...)
}

// run carries the bookkeeping of one Run call.
type run struct {
	result  *Result
	record  *stores.Run
	pending []*stores.Step
}

// Run explores the program once. The returned Result is valid even when an
// error is returned and describes the run up to the failure.
func (x *Explorer) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := x.logger.WithRunID(runID).Zerolog()
	result := &Result{RunID: runID, Outcome: OutcomeFailed}

	s, err := x.newSearcher(logger)
	if err != nil {
		result.Duration = time.Since(start)
		return result, err
	}
	strategy := string(s.Name())

	ctx, span := x.tracer.StartRunSpan(ctx, runID, x.program.Name, strategy)
	defer span.End()

	r := &run{
		result: result,
		record: &stores.Run{
			ID:           runID,
			Program:      x.program.Name,
			Strategy:     strategy,
			DistanceFile: x.config.DistanceFile,
			Status:       stores.RunStatusRunning,
			StartedAt:    start,
		},
	}

	if x.recorder != nil {
		if err := x.recorder.CreateRun(ctx, r.record); err != nil {
			telemetry.RecordError(span, err)
			result.Duration = time.Since(start)
			return result, fmt.Errorf("failed to record run: %w", err)
		}
	}

	logger.Info().
		Str("strategy", strategy).
		Int("max_steps", opts.MaxSteps).
		Bool("stop_at_target", opts.StopAtTarget).
		Msg("Starting exploration")

	outcome, runErr := x.explore(ctx, s, r, opts, logger)
	r.result.Outcome = outcome
	r.result.Duration = time.Since(start)

	if err := x.finish(ctx, r, runErr); err != nil && runErr == nil {
		runErr = err
	}

	x.metrics.RecordRunCompleted(string(outcome), r.result.Steps)
	span.SetAttributes(
		telemetry.AttrStep.Int(r.result.Steps),
		telemetry.AttrFrontierSize.Int(r.result.PeakFrontier),
	)

	if runErr != nil {
		telemetry.RecordError(span, runErr)
		logger.Error().Err(runErr).Str("outcome", string(outcome)).Msg("Exploration failed")
		return r.result, runErr
	}

	telemetry.RecordSuccess(span)
	logger.Info().
		Str("outcome", string(outcome)).
		Int("steps", r.result.Steps).
		Bool("target_reached", r.result.TargetReached).
		Int("peak_frontier", r.result.PeakFrontier).
		Dur("duration", r.result.Duration).
		Msg("Exploration finished")

	return r.result, nil
}

func (x *Explorer) explore(ctx context.Context, s *searcher.Searcher, r *run, opts Options, logger zerolog.Logger) (Outcome, error) {
	engine := NewEngine(x.program)

	initial := engine.Initial()
	if err := s.Update(nil, []searcher.State{initial}, nil); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to seed searcher: %w", err)
	}
	r.observeFrontier(s.Len())

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return OutcomeCancelled, err
		}
		if opts.MaxSteps > 0 && step >= opts.MaxSteps {
			logger.Warn().Int("steps", step).Msg("Step limit reached")
			return OutcomeStepLimit, nil
		}

		selected, err := s.Select()
		if searcher.IsExhausted(err) {
			return OutcomeExhausted, nil
		}
		if err != nil {
			return OutcomeFailed, err
		}

		st, ok := selected.(*State)
		if !ok {
			return OutcomeFailed, fmt.Errorf("searcher returned foreign state %s", selected.ID())
		}

		reached, err := x.step(ctx, s, engine, r, step, st)
		if err != nil {
			return OutcomeFailed, err
		}

		if reached && !r.result.TargetReached {
			r.result.TargetReached = true
			r.result.TargetStep = step
			x.metrics.RecordTargetReached(string(s.Name()))
			logger.Info().
				Int("step", step).
				Stringer("state", st.ID()).
				Msg("Target reached")
		}
		if reached && opts.StopAtTarget {
			return OutcomeTargetReached, nil
		}
	}
}

// step executes st and reports the transition to the searcher.
func (x *Explorer) step(ctx context.Context, s *searcher.Searcher, engine *Engine, r *run, index int, st *State) (bool, error) {
	_, span := x.tracer.StartStepSpan(ctx, index, uint64(st.ID()), int(st.Location()))
	defer span.End()

	loc := st.Location()
	priority, _ := s.Priority(st.ID())

	res, err := engine.Step(st)
	if err != nil {
		telemetry.RecordError(span, err)
		return false, err
	}

	if err := s.Update(st, searcherStates(res.Added), searcherStates(res.Removed)); err != nil {
		var serr *searcher.SearchError
		if errors.As(err, &serr) {
			span.SetAttributes(
				telemetry.AttrErrorClass.String(string(serr.Class)),
				telemetry.AttrErrorCode.String(serr.Code),
			)
		}
		telemetry.RecordError(span, err)
		return false, err
	}

	span.SetAttributes(
		telemetry.AttrForks.Int(len(res.Added)),
		telemetry.AttrTerminated.Int(len(res.Removed)),
		telemetry.AttrFrontierSize.Int(s.Len()),
		telemetry.AttrPriority.Float64(priority),
	)

	r.result.Steps++
	r.result.Selections = append(r.result.Selections, st.ID())
	r.observeFrontier(s.Len())

	if x.recorder != nil {
		rec := &stores.Step{
			RunID:         r.result.RunID,
			Index:         index,
			StateID:       uint64(st.ID()),
			Location:      int(loc),
			Forks:         len(res.Added),
			Terminated:    len(res.Removed),
			FrontierSize:  s.Len(),
			ReachedTarget: res.ReachedTarget,
		}
		if !math.IsInf(priority, 1) {
			rec.Priority = &priority
		}
		r.pending = append(r.pending, rec)
		if len(r.pending) >= stepBatchSize {
			if err := x.flush(ctx, r); err != nil {
				return false, err
			}
		}
	}

	return res.ReachedTarget, nil
}

func (r *run) observeFrontier(n int) {
	if n > r.result.PeakFrontier {
		r.result.PeakFrontier = n
	}
}

func (x *Explorer) flush(ctx context.Context, r *run) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := x.recorder.AppendSteps(ctx, r.pending); err != nil {
		return fmt.Errorf("failed to record steps: %w", err)
	}
	r.pending = r.pending[:0]
	return nil
}

// finish writes the remaining steps and the run summary. It uses a fresh
// context so that a cancelled run is still recorded.
func (x *Explorer) finish(ctx context.Context, r *run, runErr error) error {
	if x.recorder == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	if err := x.flush(ctx, r); err != nil {
		return err
	}

	rec := r.record
	rec.Outcome = string(r.result.Outcome)
	rec.Steps = r.result.Steps
	rec.PeakFrontier = r.result.PeakFrontier
	if r.result.TargetReached {
		step := r.result.TargetStep
		rec.TargetStep = &step
	}

	switch {
	case r.result.Outcome == OutcomeCancelled:
		rec.Status = stores.RunStatusCancelled
	case runErr != nil:
		rec.Status = stores.RunStatusFailed
	default:
		rec.Status = stores.RunStatusCompleted
	}
	if runErr != nil {
		msg := runErr.Error()
		rec.Error = &msg
	}

	if err := x.recorder.CompleteRun(ctx, rec); err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return nil
}
