package searcher

import "maps"

// StateInfo is the scheduling metadata of one state.
type StateInfo struct {
	// Location is the instruction the state reached on its last step.
	Location Location

	// Depth is the number of steps taken along the branch.
	Depth int

	// GMax is the highest elementary depth handed out so far.
	GMax int

	// GVal holds the elementary depth of each location, assigned on the
	// first visit in increasing order.
	GVal map[Location]int

	// VisitCount counts the visits of each location.
	VisitCount map[Location]int
}

func newStateInfo() *StateInfo {
	return &StateInfo{
		GVal:       make(map[Location]int),
		VisitCount: make(map[Location]int),
	}
}

// Clone returns a deep copy.
func (i *StateInfo) Clone() StateInfo {
	c := *i
	c.GVal = maps.Clone(i.GVal)
	c.VisitCount = maps.Clone(i.VisitCount)
	if c.GVal == nil {
		c.GVal = make(map[Location]int)
	}
	if c.VisitCount == nil {
		c.VisitCount = make(map[Location]int)
	}
	return c
}

// InfoStore is the side table of StateInfo records, keyed by state identity.
type InfoStore struct {
	infos map[StateID]*StateInfo
}

// NewInfoStore creates an empty store.
func NewInfoStore() *InfoStore {
	return &InfoStore{infos: make(map[StateID]*StateInfo)}
}

// Get returns the record of id, creating a zero record on first access.
func (s *InfoStore) Get(id StateID) *StateInfo {
	info, ok := s.infos[id]
	if !ok {
		info = newStateInfo()
		s.infos[id] = info
	}
	return info
}

// Lookup returns the record of id without creating it.
func (s *InfoStore) Lookup(id StateID) (*StateInfo, bool) {
	info, ok := s.infos[id]
	return info, ok
}

// Delete drops the record of id.
func (s *InfoStore) Delete(id StateID) {
	delete(s.infos, id)
}

// Len returns the number of records.
func (s *InfoStore) Len() int {
	return len(s.infos)
}
