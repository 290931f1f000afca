package band

import (
	"fmt"
	"strings"

	"cellintel/cell"
)

// OverlapPolicy decides which band ID reports the NR-ARFCN span shared by n77
// and n78. The other ID is always listed in Band.Alternates.
type OverlapPolicy int

const (
	PreferN78 OverlapPolicy = iota
	PreferN77
)

// ParseOverlapPolicy maps a config value ("n78", "n77", "") to a policy.
func ParseOverlapPolicy(value string) (OverlapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "n78":
		return PreferN78, nil
	case "n77":
		return PreferN77, nil
	default:
		return PreferN78, fmt.Errorf("band: unknown NR overlap policy %q (want n77 or n78)", value)
	}
}

func (p OverlapPolicy) String() string {
	if p == PreferN77 {
		return "n77"
	}
	return "n78"
}

// Resolver holds one table per RAT. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	lte   *Table
	nr    *Table
	gsm   *Table
	wcdma *Table
}

// NewResolver builds the default per-RAT tables with the given NR overlap policy.
func NewResolver(policy OverlapPolicy) *Resolver {
	primary, alternate := bandN78, bandN77
	if policy == PreferN77 {
		primary, alternate = bandN77, bandN78
	}
	shared := primary
	shared.Alternates = []string{alternate.ID}

	nrAll := make([]Range, 0, len(nrRanges)+1)
	nrAll = append(nrAll, nrRanges...)
	nrAll = append(nrAll, Range{Start: n7xStart, End: n7xEnd - 1, Band: shared})

	return &Resolver{
		lte:   mustTable(lteRanges),
		nr:    mustTable(nrAll),
		gsm:   mustTable(gsmRanges),
		wcdma: mustTable(wcdmaRanges),
	}
}

// Resolve returns the band for a channel number of the given RAT. A nil channel
// or a RAT without a table yields cell.UnknownBand.
func (r *Resolver) Resolve(rat cell.RAT, ch *int) cell.Band {
	if r == nil || ch == nil {
		return cell.UnknownBand
	}
	t := r.Table(rat)
	if t == nil {
		return cell.UnknownBand
	}
	b := t.Lookup(*ch)
	if len(b.Alternates) > 0 {
		b.Alternates = append([]string(nil), b.Alternates...)
	}
	return b
}

// Table returns the range table for rat, or nil when none exists.
func (r *Resolver) Table(rat cell.RAT) *Table {
	if r == nil {
		return nil
	}
	switch rat {
	case cell.LTE:
		return r.lte
	case cell.NR:
		return r.nr
	case cell.GSM:
		return r.gsm
	case cell.WCDMA:
		return r.wcdma
	case cell.Unknown:
		return nil
	}
	return nil
}
