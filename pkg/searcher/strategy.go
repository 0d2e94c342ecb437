package searcher

import (
	"fmt"
	"math"
)

// Metric is a named strategy counter shown in worklist dumps.
type Metric struct {
	Name  string
	Value int
}

// Strategy maintains per-state metadata and turns it into a priority. Lower
// priorities are explored first.
type Strategy interface {
	// Name returns the strategy kind.
	Name() StrategyKind

	// Advance records that the state described by info executed one step and
	// is now at loc.
	Advance(info *StateInfo, loc Location)

	// Propagate seeds a forked child's metadata from its parent. A nil
	// parent leaves the child untouched.
	Propagate(parent, child *StateInfo)

	// Priority scores a state.
	Priority(info *StateInfo, distances *DistanceMap) float64

	// Metrics lists the counters behind a priority, for debugging.
	Metrics(info *StateInfo) []Metric
}

// NewStrategy returns the strategy of the given kind. An empty kind selects
// StrategyAStar.
func NewStrategy(kind StrategyKind) (Strategy, error) {
	switch kind {
	case StrategyAStar, "":
		return AStar{}, nil
	case StrategyAStar2:
		return AStar2{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", kind)
	}
}

// depthTracker holds the bookkeeping shared by every strategy: the current
// location and the branch depth.
type depthTracker struct{}

func (depthTracker) advance(info *StateInfo, loc Location) {
	info.Location = loc
	info.Depth++
}

func (depthTracker) propagate(parent, child *StateInfo) {
	if parent == nil {
		return
	}
	child.Depth = parent.Depth
}

// AStar scores a state by its distance to the target plus its depth.
type AStar struct {
	depth depthTracker
}

// Name implements Strategy.
func (AStar) Name() StrategyKind { return StrategyAStar }

// Advance implements Strategy.
func (s AStar) Advance(info *StateInfo, loc Location) {
	s.depth.advance(info, loc)
}

// Propagate implements Strategy.
func (s AStar) Propagate(parent, child *StateInfo) {
	s.depth.propagate(parent, child)
}

// Priority implements Strategy.
func (AStar) Priority(info *StateInfo, distances *DistanceMap) float64 {
	return distances.Lookup(info.Location) + float64(info.Depth)
}

// Metrics implements Strategy.
func (AStar) Metrics(info *StateInfo) []Metric {
	return []Metric{{Name: "depth", Value: info.Depth}}
}

// AStar2 favours states that reach fresh locations. Every location gets an
// elementary depth g when a state first visits it; visiting it more than g
// times adds a logarithmic penalty weighted by g, so states spinning in a loop
// sink in the frontier while short backtracks stay cheap.
type AStar2 struct {
	depth depthTracker
}

// Name implements Strategy.
func (AStar2) Name() StrategyKind { return StrategyAStar2 }

// Advance implements Strategy.
func (s AStar2) Advance(info *StateInfo, loc Location) {
	s.depth.advance(info, loc)
	if info.GVal == nil {
		info.GVal = make(map[Location]int)
	}
	if info.VisitCount == nil {
		info.VisitCount = make(map[Location]int)
	}

	if _, seen := info.GVal[loc]; !seen {
		info.GMax++
		info.GVal[loc] = info.GMax
	}
	info.VisitCount[loc]++
}

// Propagate implements Strategy.
func (s AStar2) Propagate(parent, child *StateInfo) {
	s.depth.propagate(parent, child)
	if parent == nil {
		return
	}

	child.GMax = parent.GMax
	child.GVal = make(map[Location]int, len(parent.GVal))
	for loc, g := range parent.GVal {
		child.GVal[loc] = g
	}
	child.VisitCount = make(map[Location]int, len(parent.VisitCount))
	for loc, mu := range parent.VisitCount {
		child.VisitCount[loc] = mu
	}
}

// Priority implements Strategy.
func (AStar2) Priority(info *StateInfo, distances *DistanceMap) float64 {
	g := info.GVal[info.Location]
	mu := info.VisitCount[info.Location]
	return float64(g)*Lambda(mu, g) + distances.Lookup(info.Location)
}

// Metrics implements Strategy.
func (AStar2) Metrics(info *StateInfo) []Metric {
	return []Metric{
		{Name: "depth", Value: info.Depth},
		{Name: "g", Value: info.GVal[info.Location]},
		{Name: "mu", Value: info.VisitCount[info.Location]},
	}
}

// Lambda is the revisit penalty factor of a location visited mu times whose
// elementary depth is g. It is zero while mu <= g and grows as
// log10(mu-g+1)/10 beyond that.
func Lambda(mu, g int) float64 {
	if mu <= g {
		return 0
	}
	return math.Log10(float64(mu-(g-1))) / 10
}
