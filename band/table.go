// Package band resolves RAT-specific channel numbers (EARFCN, NR-ARFCN, ARFCN,
// UARFCN) to frequency bands using ordered, disjoint range tables. Lookups are
// total: a channel outside every range resolves to cell.UnknownBand.
package band

import (
	"errors"
	"fmt"
	"sort"

	"cellintel/cell"
)

var errOverlap = errors.New("band: overlapping ranges")

// Range maps an inclusive channel-number span to a band.
type Range struct {
	Start int
	End   int
	Band  cell.Band
}

// Contains reports whether ch falls inside the range.
func (r Range) Contains(ch int) bool {
	return ch >= r.Start && ch <= r.End
}

// Table is an immutable, sorted set of non-overlapping ranges.
type Table struct {
	ranges []Range
}

// NewTable sorts ranges by start and verifies that no two overlap. Gaps between
// ranges are allowed.
func NewTable(ranges []Range) (*Table, error) {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i, r := range sorted {
		if r.End < r.Start {
			return nil, fmt.Errorf("band: range %s [%d,%d] ends before it starts", r.Band.ID, r.Start, r.End)
		}
		if i > 0 && r.Start <= sorted[i-1].End {
			prev := sorted[i-1]
			return nil, fmt.Errorf("%w: %s [%d,%d] and %s [%d,%d]", errOverlap,
				prev.Band.ID, prev.Start, prev.End, r.Band.ID, r.Start, r.End)
		}
	}
	return &Table{ranges: sorted}, nil
}

// mustTable builds a table from package-level data that is known to be valid.
func mustTable(ranges []Range) *Table {
	t, err := NewTable(ranges)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the band containing ch, or cell.UnknownBand.
func (t *Table) Lookup(ch int) cell.Band {
	if t == nil || len(t.ranges) == 0 {
		return cell.UnknownBand
	}
	// First range whose end is >= ch; it matches only if it also starts <= ch.
	idx := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].End >= ch })
	if idx < len(t.ranges) && t.ranges[idx].Contains(ch) {
		return t.ranges[idx].Band
	}
	return cell.UnknownBand
}

// Ranges returns a copy of the table contents in ascending order.
func (t *Table) Ranges() []Range {
	if t == nil {
		return nil
	}
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Len returns the number of ranges.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ranges)
}
