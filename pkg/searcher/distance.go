package searcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DistanceMap maps locations to their distance to the target. Locations
// without a record are infinitely far. A DistanceMap is immutable and safe to
// share between searchers.
type DistanceMap struct {
	dist map[Location]int
}

// NewDistanceMap copies records into a new DistanceMap.
func NewDistanceMap(records map[Location]int) *DistanceMap {
	d := &DistanceMap{dist: make(map[Location]int, len(records))}
	for loc, v := range records {
		d.dist[loc] = v
	}
	return d
}

// Lookup returns the distance of loc, or +Inf when loc has no record.
func (d *DistanceMap) Lookup(loc Location) float64 {
	if d == nil {
		return math.Inf(1)
	}
	v, ok := d.dist[loc]
	if !ok {
		return math.Inf(1)
	}
	return float64(v)
}

// Len returns the number of records.
func (d *DistanceMap) Len() int {
	if d == nil {
		return 0
	}
	return len(d.dist)
}

// WriteTo writes the records as "<location>:<distance>:" lines ordered by
// location.
func (d *DistanceMap) WriteTo(w io.Writer) (int64, error) {
	if d == nil {
		return 0, nil
	}
	locs := make([]Location, 0, d.Len())
	for loc := range d.dist {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })

	bw := bufio.NewWriter(w)
	var total int64
	for _, loc := range locs {
		n, err := fmt.Fprintf(bw, "%d:%d:\n", int(loc), d.dist[loc])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// DistanceOptions controls distance file parsing.
type DistanceOptions struct {
	// Strict fails the parse on the first malformed record.
	Strict bool
}

// MalformedRecord describes a distance line that could not be parsed.
type MalformedRecord struct {
	Line   int
	Text   string
	Reason string
}

// DistanceReport summarizes a parse.
type DistanceReport struct {
	// Lines is the number of non-empty lines read.
	Lines int

	// Duplicates counts records that overwrote an earlier one.
	Duplicates int

	// Malformed lists the skipped lines.
	Malformed []MalformedRecord
}

// ParseDistances reads "<location>:<distance>[:...]" records from r. Empty
// lines are ignored and anything after the second field is ignored. A later
// record for the same location replaces the earlier one.
func ParseDistances(r io.Reader, opts DistanceOptions, logger zerolog.Logger) (*DistanceMap, *DistanceReport, error) {
	d := &DistanceMap{dist: make(map[Location]int)}
	report := &DistanceReport{}

	// Trailing fields may be arbitrarily long, so lines are not length bounded.
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, report, fmt.Errorf("failed to read distance records: %w", readErr)
		}
		if raw == "" && readErr != nil {
			break
		}
		lineNo++

		line := strings.TrimSpace(raw)
		if line != "" {
			report.Lines++
			if err := d.addRecord(line, lineNo, opts, report, logger); err != nil {
				return nil, report, err
			}
		}

		if readErr != nil {
			break
		}
	}

	return d, report, nil
}

// addRecord parses one non-empty line into d. It returns an error only for a
// malformed record under opts.Strict.
func (d *DistanceMap) addRecord(line string, lineNo int, opts DistanceOptions, report *DistanceReport, logger zerolog.Logger) error {
	loc, dist, reason := parseDistanceRecord(line)
	if reason != "" {
		if opts.Strict {
			return NewInvalidError("malformed distance record", nil).
				WithCode(ErrCodeMalformedDistance).
				WithDetail("line", lineNo).
				WithDetail("text", line).
				WithDetail("reason", reason)
		}
		logger.Warn().
			Int("line", lineNo).
			Str("text", line).
			Str("reason", reason).
			Msg("Skipping malformed distance record")
		report.Malformed = append(report.Malformed, MalformedRecord{Line: lineNo, Text: line, Reason: reason})
		return nil
	}

	if _, exists := d.dist[loc]; exists {
		report.Duplicates++
	}
	d.dist[loc] = dist
	return nil
}

// parseDistanceRecord returns a non-empty reason when line is malformed.
func parseDistanceRecord(line string) (Location, int, string) {
	fields := strings.SplitN(line, ":", 3)
	if len(fields) < 2 {
		return 0, 0, "missing ':' separator"
	}

	loc, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, fmt.Sprintf("location %q is not an integer", fields[0])
	}
	if loc < 0 {
		return 0, 0, "location is negative"
	}

	dist, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, fmt.Sprintf("distance %q is not an integer", fields[1])
	}
	if dist < 0 {
		return 0, 0, "distance is negative"
	}

	return Location(loc), dist, ""
}

// LoadDistances loads the distance file at path. A missing path or a file
// that cannot be opened or read yields an empty map, so every distance is
// infinite and exploration relies on the strategy's other terms. Only a
// malformed record under opts.Strict returns an error.
func LoadDistances(path string, opts DistanceOptions, logger zerolog.Logger) (*DistanceMap, error) {
	empty := NewDistanceMap(nil)

	if path == "" {
		logger.Warn().Msg("No distance file given, all distances are considered infinite")
		return empty, nil
	}

	logger.Info().Str("path", path).Msg("Loading distance map")

	file, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Couldn't open distance file, all distances are considered infinite")
		return empty, nil
	}
	defer file.Close()

	d, report, err := ParseDistances(file, opts, logger)
	if err != nil {
		if IsInvalid(err) {
			return nil, err
		}
		logger.Warn().Err(err).Str("path", path).Msg("Couldn't read distance file, all distances are considered infinite")
		return empty, nil
	}

	logger.Info().
		Str("path", path).
		Int("records", d.Len()).
		Int("skipped", len(report.Malformed)).
		Int("duplicates", report.Duplicates).
		Msg("Distance map loaded")

	return d, nil
}
