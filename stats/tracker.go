// Package stats accumulates counters over processed scans for the end-of-run
// summary: cells per RAT, issues per kind, band occupancy and CA classes.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cellintel/classify"
)

// Tracker is safe for concurrent use.
type Tracker struct {
	// keyed counters live in sync.Map + atomic.Uint64 so per-cell increments don't share a mutex
	ratCounts     sync.Map // RAT name -> *atomic.Uint64
	issueCounts   sync.Map // issue kind -> *atomic.Uint64
	bandCounts    sync.Map // band ID -> *atomic.Uint64
	caClassCounts sync.Map // carrier class -> *atomic.Uint64

	start   atomic.Int64
	scans   atomic.Uint64
	records atomic.Uint64
	cells   atomic.Uint64
	skipped atomic.Uint64
	noData  atomic.Uint64

	metrics atomic.Pointer[Metrics]
}

// NewTracker creates a tracker whose uptime starts now.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.start.Store(time.Now().UnixNano())
	return t
}

// SetMetrics mirrors every later RecordScan into m; nil detaches.
func (t *Tracker) SetMetrics(m *Metrics) {
	t.metrics.Store(m)
}

// RecordScan folds one processed scan into the counters.
func (t *Tracker) RecordScan(records int, scan classify.Scan) {
	t.metrics.Load().Observe(records, scan)
	t.scans.Add(1)
	t.records.Add(uint64(records))
	t.cells.Add(uint64(len(scan.Cells)))
	t.skipped.Add(uint64(scan.Skipped()))
	if len(scan.Cells) == 0 {
		t.noData.Add(1)
	}
	for _, c := range scan.Cells {
		incrementCounter(&t.ratCounts, c.RAT.String())
		incrementCounter(&t.bandCounts, c.Band.ID)
	}
	for _, issue := range scan.Issues {
		incrementCounter(&t.issueCounts, string(issue.Kind))
	}
	if scan.Session.Active {
		incrementCounter(&t.caClassCounts, scan.Session.Class())
	}
}

// Scans returns the number of scans recorded.
func (t *Tracker) Scans() uint64 { return t.scans.Load() }

// Records returns the number of raw records seen.
func (t *Tracker) Records() uint64 { return t.records.Load() }

// Cells returns the number of classified cells.
func (t *Tracker) Cells() uint64 { return t.cells.Load() }

// Skipped returns the number of records dropped as malformed.
func (t *Tracker) Skipped() uint64 { return t.skipped.Load() }

// NoData returns the number of scans that produced no usable cell.
func (t *Tracker) NoData() uint64 { return t.noData.Load() }

// RATCounts returns a copy of per-RAT cell counts.
func (t *Tracker) RATCounts() map[string]uint64 { return snapshot(&t.ratCounts) }

// IssueCounts returns a copy of per-kind issue counts.
func (t *Tracker) IssueCounts() map[string]uint64 { return snapshot(&t.issueCounts) }

// BandCounts returns a copy of per-band cell counts.
func (t *Tracker) BandCounts() map[string]uint64 { return snapshot(&t.bandCounts) }

// CAClassCounts returns a copy of per-class counts for scans with active CA.
func (t *Tracker) CAClassCounts() map[string]uint64 { return snapshot(&t.caClassCounts) }

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(time.Unix(0, t.start.Load()))
}

// SnapshotLines returns human-readable stats ready for console display.
func (t *Tracker) SnapshotLines() []string {
	return []string{
		fmt.Sprintf("Scans: %d (no data: %d), records: %d, cells: %d, skipped: %d",
			t.Scans(), t.NoData(), t.Records(), t.Cells(), t.Skipped()),
		formatMapCounts("Cells by RAT", &t.ratCounts),
		formatMapCounts("Cells by band", &t.bandCounts),
		formatMapCounts("Issues", &t.issueCounts),
		formatMapCounts("CA classes", &t.caClassCounts),
	}
}

func snapshot(m *sync.Map) map[string]uint64 {
	counts := make(map[string]uint64)
	m.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return counts
}

func formatMapCounts(label string, m *sync.Map) string {
	counts := snapshot(m)
	if len(counts) == 0 {
		return label + ": (none)"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var builder strings.Builder
	builder.WriteString(label)
	builder.WriteString(": ")
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "%s=%d", k, counts[k])
	}
	return builder.String()
}

func incrementCounter(m *sync.Map, key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if value, ok := m.Load(key); ok {
		value.(*atomic.Uint64).Add(1)
		return
	}
	counter := &atomic.Uint64{}
	actual, loaded := m.LoadOrStore(key, counter)
	if loaded {
		actual.(*atomic.Uint64).Add(1)
		return
	}
	counter.Add(1)
}
