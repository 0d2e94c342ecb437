// Package searcher implements goal-directed state selection for a
// state-space exploration engine.
//
// # Overview
//
// The engine keeps a population of live execution states that grows when a
// state forks at a branch and shrinks when a state terminates. After every
// step the engine reports what happened and asks which state to run next:
//
//	s, _ := searcher.New(searcher.Config{Strategy: searcher.StrategyAStar2, DistanceFile: "prog.dist"})
//	_ = s.Update(nil, []searcher.State{initial}, nil)
//	for {
//	    st, err := s.Select()
//	    if searcher.IsExhausted(err) {
//	        break
//	    }
//	    added, removed := engine.Step(st)
//	    if err := s.Update(st, added, removed); err != nil {
//	        return err // broken invariant
//	    }
//	}
//
// # Priorities
//
// Every state carries a StateInfo record maintained by the Strategy. The
// distance map gives the distance from a location to the target; locations
// without a record are infinitely far.
//
//   - astar: distance + depth. Shallow states close to the target go first.
//   - astar2: g*Lambda(mu, g) + distance, where g is the elementary depth of
//     the current location (its rank in the state's first-visit order) and mu
//     the number of visits. Revisits beyond g are penalized logarithmically.
//
// Forked children copy their parent's record (deeply, for astar2) before the
// parent advances.
//
// # Distance Files
//
// One record per line, "<location>:<distance>:", anything after the second
// field ignored. A missing or unreadable file leaves every distance infinite.
// Malformed records are skipped with a warning, or fail the load when
// Config.StrictDistances is set.
//
// # Errors
//
// Select on an empty frontier returns an error matching ErrEmptyFrontier
// (IsExhausted). Update rejects inconsistent calls with an internal error
// (IsInternal), which the driving loop should treat as fatal.
package searcher
