package explorer

import (
	"fmt"

	"github.com/kleereach/reachsched/pkg/searcher"
)

// State is one execution branch of a simulated program. It sits at the
// location it executes next.
type State struct {
	id     searcher.StateID
	loc    searcher.Location
	parent searcher.StateID
	steps  int
}

// ID implements searcher.State.
func (s *State) ID() searcher.StateID { return s.id }

// Location implements searcher.State.
func (s *State) Location() searcher.Location { return s.loc }

// Parent returns the state this one forked from. The initial state is its
// own parent.
func (s *State) Parent() searcher.StateID { return s.parent }

// Steps returns the number of instructions the branch executed, including
// those of its ancestors.
func (s *State) Steps() int { return s.steps }

// StepResult describes how one step changed the state population.
type StepResult struct {
	// Added are the states forked by the step.
	Added []*State

	// Removed are the states that terminated.
	Removed []*State

	// ReachedTarget is set when the stepped state executed the target.
	ReachedTarget bool
}

// Engine executes states of a Program. Executing a branch moves the state
// to the first successor and forks one new state per further successor.
// Executing an exit or the target terminates the state.
type Engine struct {
	program *Program
	nextID  searcher.StateID
	live    map[searcher.StateID]*State
}

// NewEngine creates an engine for p with no live state.
func NewEngine(p *Program) *Engine {
	return &Engine{
		program: p,
		live:    make(map[searcher.StateID]*State),
	}
}

// Initial creates a state at the program entry.
func (e *Engine) Initial() *State {
	st := e.spawn(e.program.Entry, 0)
	st.parent = st.id
	return st
}

// Live returns the number of states that have not terminated.
func (e *Engine) Live() int {
	return len(e.live)
}

// Step executes one instruction of st.
func (e *Engine) Step(st *State) (StepResult, error) {
	if e.live[st.id] != st {
		return StepResult{}, fmt.Errorf("state %s is not live", st.id)
	}

	var res StepResult
	st.steps++

	if st.loc == e.program.Target {
		res.ReachedTarget = true
		res.Removed = append(res.Removed, e.terminate(st))
		return res, nil
	}

	succs := e.program.Successors(st.loc)
	if len(succs) == 0 {
		res.Removed = append(res.Removed, e.terminate(st))
		return res, nil
	}

	for _, loc := range succs[1:] {
		child := e.spawn(loc, st.steps)
		child.parent = st.id
		res.Added = append(res.Added, child)
	}
	st.loc = succs[0]

	return res, nil
}

func (e *Engine) spawn(loc searcher.Location, steps int) *State {
	st := &State{id: e.nextID, loc: loc, steps: steps}
	e.nextID++
	e.live[st.id] = st
	return st
}

func (e *Engine) terminate(st *State) *State {
	delete(e.live, st.id)
	return st
}

// searcherStates converts engine states for the searcher.
func searcherStates(states []*State) []searcher.State {
	if len(states) == 0 {
		return nil
	}
	out := make([]searcher.State, len(states))
	for i, st := range states {
		out[i] = st
	}
	return out
}
