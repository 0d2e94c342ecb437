package searcher

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kleereach/reachsched/pkg/frontier"
)

// WriteWorklist dumps the frontier, best state first, followed by the
// selected state. It is a debugging aid and does not change the searcher.
func (s *Searcher) WriteWorklist(w io.Writer, selected State) {
	entries := s.frontier.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].Value.ID() < entries[j].Value.ID()
	})

	var b strings.Builder
	b.WriteString("Selecting a new state...\n")
	b.WriteString("Current worklist:\n[\n")
	for _, e := range entries {
		b.WriteString(s.describe(e))
		b.WriteByte('\n')
	}
	b.WriteString("]\n")
	if selected != nil {
		fmt.Fprintf(&b, "Selected state: %s\n\n", selected.ID())
	}

	_, _ = io.WriteString(w, b.String())
}

func (s *Searcher) describe(e frontier.Entry[State]) string {
	st := e.Value
	var b strings.Builder
	fmt.Fprintf(&b, "\t(%s) [prio=%g] %s", st.ID(), e.Priority, st.Location())
	if info, ok := s.infos.Lookup(st.ID()); ok {
		for _, m := range s.strategy.Metrics(info) {
			fmt.Fprintf(&b, " | %s: %d", m.Name, m.Value)
		}
	}
	fmt.Fprintf(&b, " | dist: %g", s.distances.Lookup(st.Location()))
	return b.String()
}
