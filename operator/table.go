// Package operator maps (MCC, MNC) pairs to carrier brand names. Tables are
// immutable once built so one instance can be shared by every caller; a region
// swap is a different table, not a mutation.
package operator

import (
	"fmt"
	"sort"
	"strings"
)

// Unknown is the brand returned for pairs that are not in the table. It is a
// normal result, not an error.
const Unknown = "Unknown"

// Key identifies a network by mobile country and network code.
type Key struct {
	MCC int
	MNC int
}

func (k Key) String() string {
	return fmt.Sprintf("%03d-%02d", k.MCC, k.MNC)
}

// Entry assigns a brand to one or more MNCs under a single MCC. It is the unit
// of the on-disk table formats.
type Entry struct {
	Brand string `yaml:"brand" plist:"brand"`
	MCC   int    `yaml:"mcc" plist:"mcc"`
	MNC   *int   `yaml:"mnc,omitempty" plist:"mnc,omitempty"`
	MNCs  []int  `yaml:"mncs,omitempty" plist:"mncs,omitempty"`
}

// Table is a read-only (MCC, MNC) -> brand lookup.
type Table struct {
	brands map[Key]string
	names  []string
}

// NewTable validates entries and builds a table. A pair mapped to two different
// brands is rejected; repeating the same mapping is harmless.
func NewTable(entries []Entry) (*Table, error) {
	brands := make(map[Key]string)
	seen := make(map[string]struct{})
	for i, e := range entries {
		brand := strings.TrimSpace(e.Brand)
		if brand == "" {
			return nil, fmt.Errorf("operator: entry %d has no brand", i)
		}
		if e.MCC <= 0 {
			return nil, fmt.Errorf("operator: entry %d (%s) has invalid mcc %d", i, brand, e.MCC)
		}
		mncs := e.MNCs
		if e.MNC != nil {
			mncs = append([]int{*e.MNC}, mncs...)
		}
		if len(mncs) == 0 {
			return nil, fmt.Errorf("operator: entry %d (%s) lists no mnc", i, brand)
		}
		for _, mnc := range mncs {
			key := Key{MCC: e.MCC, MNC: mnc}
			if prev, ok := brands[key]; ok && prev != brand {
				return nil, fmt.Errorf("operator: %s mapped to both %q and %q", key, prev, brand)
			}
			brands[key] = brand
		}
		seen[brand] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Table{brands: brands, names: names}, nil
}

// Resolve returns the brand for the pair, or Unknown.
func (t *Table) Resolve(mcc, mnc int) string {
	if t == nil {
		return Unknown
	}
	if brand, ok := t.brands[Key{MCC: mcc, MNC: mnc}]; ok {
		return brand
	}
	return Unknown
}

// Brands returns the distinct brand names in the table, sorted.
func (t *Table) Brands() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of (MCC, MNC) pairs.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.brands)
}
