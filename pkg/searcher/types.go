package searcher

import (
	"fmt"
	"strconv"
)

// StateID is the stable identity of an execution state, assigned by the
// exploration engine.
type StateID uint64

// String returns the decimal form of the identifier.
func (id StateID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Location identifies a program instruction, typically its line number.
type Location int

// String returns the location as "l<n>".
func (l Location) String() string {
	return fmt.Sprintf("l%d", int(l))
}

// State is the engine's view of one execution branch. The searcher only
// references states; it never creates or destroys them. Two states are the
// same state exactly when their IDs are equal.
type State interface {
	// ID returns the stable identity of the state.
	ID() StateID

	// Location returns the instruction the state is about to execute.
	Location() Location
}

// StrategyKind selects the priority function of a Searcher.
type StrategyKind string

const (
	// StrategyAStar scores a state by distance to target plus branch depth.
	StrategyAStar StrategyKind = "astar"

	// StrategyAStar2 scores a state by distance to target plus a revisit
	// penalty weighted by elementary depth.
	StrategyAStar2 StrategyKind = "astar2"
)

// Config holds the construction-time toggles of a Searcher.
type Config struct {
	// Strategy selects the priority function. Defaults to StrategyAStar.
	Strategy StrategyKind `yaml:"strategy" validate:"omitempty,oneof=astar astar2"`

	// DistanceFile is the path of the distance file loaded on the first
	// transition. Empty means every distance is infinite.
	DistanceFile string `yaml:"distance_file"`

	// StrictDistances makes malformed distance records fail the load instead
	// of being skipped with a warning.
	StrictDistances bool `yaml:"strict_distances"`

	// DebugWorklist dumps the frontier on every Select.
	DebugWorklist bool `yaml:"debug_worklist"`
}
