package explorer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kleereach/reachsched/pkg/searcher"
)

// Program is a control-flow graph over numbered locations. A location with
// successors is a plain instruction (one successor) or a branch (several).
// A location without successors is an exit.
type Program struct {
	// Name identifies the program in logs and recorded runs.
	Name string `yaml:"name"`

	// Entry is where the initial state starts.
	Entry searcher.Location `yaml:"entry" validate:"min=0"`

	// Target is the location exploration tries to reach.
	Target searcher.Location `yaml:"target" validate:"min=0"`

	// Edges maps each location to its successors in branch order.
	Edges map[searcher.Location][]searcher.Location `yaml:"edges" validate:"required,dive,keys,min=0,endkeys,dive,min=0"`
}

// LoadProgram reads a program from a YAML file. The file name without its
// extension names the program unless the file sets a name.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	p, err := ParseProgram(data)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseProgram decodes and validates a YAML program.
func ParseProgram(data []byte) (*Program, error) {
	p := &Program{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("program is empty")
		}
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the program is well formed.
func (p *Program) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("program validation failed: %w", err)
	}

	if _, ok := p.Edges[p.Entry]; !ok && p.Entry != p.Target {
		return fmt.Errorf("entry %s has no edges", p.Entry)
	}

	return nil
}

// Successors returns the successors of loc. An exit has none.
func (p *Program) Successors(loc searcher.Location) []searcher.Location {
	return p.Edges[loc]
}

// Locations returns every location of the program in ascending order.
func (p *Program) Locations() []searcher.Location {
	seen := map[searcher.Location]bool{p.Entry: true, p.Target: true}
	for from, succs := range p.Edges {
		seen[from] = true
		for _, to := range succs {
			seen[to] = true
		}
	}

	locs := make([]searcher.Location, 0, len(seen))
	for loc := range seen {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	return locs
}

// Distances computes the distance of every location to the target as the
// number of edges on a shortest path. Locations that cannot reach the target
// get no record.
func (p *Program) Distances() *searcher.DistanceMap {
	preds := make(map[searcher.Location][]searcher.Location)
	for from, succs := range p.Edges {
		for _, to := range succs {
			preds[to] = append(preds[to], from)
		}
	}

	dist := map[searcher.Location]int{p.Target: 0}
	queue := []searcher.Location{p.Target}
	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		for _, pred := range preds[loc] {
			if _, seen := dist[pred]; seen {
				continue
			}
			dist[pred] = dist[loc] + 1
			queue = append(queue, pred)
		}
	}

	return searcher.NewDistanceMap(dist)
}
