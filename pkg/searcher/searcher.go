package searcher

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kleereach/reachsched/pkg/frontier"
	"github.com/kleereach/reachsched/pkg/telemetry"
)

// Searcher picks the next state to explore. It keeps every live state in a
// priority frontier together with its metadata and reconciles both with the
// engine's state population on every step.
//
// A Searcher is driven by a single loop and is not safe for concurrent use.
type Searcher struct {
	config   Config
	strategy Strategy
	logger   zerolog.Logger
	metrics  *telemetry.Metrics
	trace    io.Writer

	// distances is loaded on the first transition unless injected.
	distances   *DistanceMap
	initialized bool

	frontier frontier.Queue[State]
	handles  map[StateID]frontier.Handle[State]
	infos    *InfoStore
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithMetrics reports scheduler activity to m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Searcher) {
		s.metrics = m
	}
}

// WithDistances injects an already loaded distance map. The distance file of
// the Config is then never read.
func WithDistances(d *DistanceMap) Option {
	return func(s *Searcher) {
		s.distances = d
		s.initialized = true
	}
}

// WithTraceWriter sets where worklist dumps go. Defaults to os.Stderr.
func WithTraceWriter(w io.Writer) Option {
	return func(s *Searcher) {
		s.trace = w
	}
}

// WithQueue replaces the default Fibonacci heap frontier. The queue must be
// empty.
func WithQueue(q frontier.Queue[State]) Option {
	return func(s *Searcher) {
		s.frontier = q
	}
}

// New creates a Searcher for cfg.
func New(cfg Config, opts ...Option) (*Searcher, error) {
	strategy, err := NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, NewInvalidError("invalid searcher configuration", err)
	}
	cfg.Strategy = strategy.Name()

	s := &Searcher{
		config:   cfg,
		strategy: strategy,
		logger:   zerolog.Nop(),
		trace:    os.Stderr,
		frontier: frontier.NewFibonacci[State](),
		handles:  make(map[StateID]frontier.Handle[State]),
		infos:    NewInfoStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().
		Str("component", "searcher").
		Str("strategy", string(cfg.Strategy)).
		Logger()

	return s, nil
}

// Name returns the strategy kind in use.
func (s *Searcher) Name() StrategyKind {
	return s.strategy.Name()
}

// Empty reports whether no state is left to explore.
func (s *Searcher) Empty() bool {
	return s.frontier.Empty()
}

// Len returns the number of states in the frontier.
func (s *Searcher) Len() int {
	return s.frontier.Len()
}

// Distances returns the distance map, or nil before the first transition.
func (s *Searcher) Distances() *DistanceMap {
	return s.distances
}

// Tracked reports whether the state with the given id is in the frontier.
func (s *Searcher) Tracked(id StateID) bool {
	_, ok := s.handles[id]
	return ok
}

// Info returns a copy of the metadata of a tracked state.
func (s *Searcher) Info(id StateID) (StateInfo, bool) {
	info, ok := s.infos.Lookup(id)
	if !ok {
		return StateInfo{}, false
	}
	return info.Clone(), true
}

// Priority returns the current priority of a tracked state.
func (s *Searcher) Priority(id StateID) (float64, bool) {
	h, ok := s.handles[id]
	if !ok {
		return 0, false
	}
	e, err := h.Entry()
	if err != nil {
		return 0, false
	}
	return e.Priority, true
}

// Select returns the most promising state without removing it. When the
// frontier is empty the error matches ErrEmptyFrontier: exploration is over.
func (s *Searcher) Select() (State, error) {
	top, err := s.frontier.PeekMin()
	if err != nil {
		return nil, NewExhaustedError("no states left to explore", err).
			WithCode(ErrCodeEmptyFrontier).
			WithOperation("select")
	}

	if s.config.DebugWorklist {
		s.WriteWorklist(s.trace, top.Value)
	}
	s.metrics.RecordSelection(string(s.strategy.Name()), top.Priority)

	return top.Value, nil
}

// Update reconciles the frontier after one exploration step. current is the
// state that just executed (nil on the first call of a run), added are the
// states it forked and removed are the states that terminated.
//
// Children are seeded from current's metadata before current itself is
// advanced, so they inherit the parent's pre-step view. Calls with states
// that break the bookkeeping (an added state that is already tracked, a
// current or removed state that is not) fail with an internal error before
// anything is changed.
func (s *Searcher) Update(current State, added, removed []State) error {
	start := time.Now()

	if current == nil && !s.initialized {
		if err := s.initialize(); err != nil {
			return err
		}
	}

	if err := s.validate(current, added, removed); err != nil {
		s.recordError(err)
		return err
	}

	var parent *StateInfo
	if current != nil {
		parent = s.infos.Get(current.ID())
	}

	for _, st := range added {
		info := s.infos.Get(st.ID())
		s.strategy.Propagate(parent, info)
		s.strategy.Advance(info, st.Location())

		h := s.frontier.Insert(frontier.Entry[State]{
			Priority: s.strategy.Priority(info, s.distances),
			Value:    st,
		})
		s.handles[st.ID()] = h
	}

	if current != nil {
		s.strategy.Advance(parent, current.Location())
		entry := frontier.Entry[State]{
			Priority: s.strategy.Priority(parent, s.distances),
			Value:    current,
		}
		if err := s.frontier.Update(s.handles[current.ID()], entry); err != nil {
			e := NewInternalError("failed to update current state", err).
				WithCode(ErrCodeInvalidHandle).
				WithState(current.ID()).
				WithOperation("update")
			s.recordError(e)
			return e
		}
	}

	for _, st := range removed {
		if err := s.remove(st); err != nil {
			s.recordError(err)
			return err
		}
	}

	s.metrics.RecordTransition(string(s.strategy.Name()), len(added), len(removed), time.Since(start))
	s.metrics.SetFrontierSize(s.frontier.Len())

	s.logger.Trace().
		Int("added", len(added)).
		Int("removed", len(removed)).
		Int("frontier", s.frontier.Len()).
		Msg("Transition applied")

	return nil
}

// initialize loads the distance map. It moves the searcher from the
// uninitialized to the active state.
func (s *Searcher) initialize() error {
	d, err := LoadDistances(s.config.DistanceFile, DistanceOptions{Strict: s.config.StrictDistances}, s.logger)
	if err != nil {
		s.recordError(err)
		return err
	}
	s.distances = d
	s.initialized = true
	s.metrics.SetDistanceRecords(d.Len())
	return nil
}

func (s *Searcher) validate(current State, added, removed []State) error {
	if current != nil && !s.Tracked(current.ID()) {
		return NewInternalError("current state is not tracked", nil).
			WithCode(ErrCodeInvalidHandle).
			WithState(current.ID()).
			WithOperation("update")
	}

	fresh := make(map[StateID]bool, len(added))
	for _, st := range added {
		id := st.ID()
		if s.Tracked(id) || fresh[id] {
			return NewInternalError("added state is already tracked", nil).
				WithCode(ErrCodeDuplicateState).
				WithState(id).
				WithOperation("insert")
		}
		fresh[id] = true
	}

	gone := make(map[StateID]bool, len(removed))
	for _, st := range removed {
		id := st.ID()
		if (!s.Tracked(id) && !fresh[id]) || gone[id] {
			return NewInternalError("removed state is not tracked", nil).
				WithCode(ErrCodeInvalidHandle).
				WithState(id).
				WithOperation("remove")
		}
		gone[id] = true
	}

	return nil
}

// remove drops st from the frontier and forgets its metadata. The minimum is
// popped directly, without a handle lookup.
func (s *Searcher) remove(st State) error {
	id := st.ID()

	if top, err := s.frontier.PeekMin(); err == nil && top.Value.ID() == id {
		if _, err := s.frontier.PopMin(); err != nil {
			return NewInternalError("failed to pop removed state", err).
				WithCode(ErrCodeInvalidHandle).
				WithState(id).
				WithOperation("remove")
		}
	} else {
		h, ok := s.handles[id]
		if !ok {
			return NewInternalError("removed state is not tracked", nil).
				WithCode(ErrCodeInvalidHandle).
				WithState(id).
				WithOperation("remove")
		}
		if err := s.frontier.Erase(h); err != nil {
			return NewInternalError("failed to erase removed state", err).
				WithCode(ErrCodeInvalidHandle).
				WithState(id).
				WithOperation("remove")
		}
	}

	delete(s.handles, id)
	s.infos.Delete(id)
	return nil
}

func (s *Searcher) recordError(err error) {
	if se, ok := err.(*SearchError); ok {
		s.metrics.RecordError(string(se.Class), se.Code)
	}
	s.logger.Error().Err(err).Msg("Searcher transition failed")
}
