// Package ca detects carrier aggregation from one scan's normalized cells: it
// picks the primary cell, counts secondary and NR carriers, classifies the
// session and estimates aggregate bandwidth and throughput.
package ca

import "cellintel/cell"

// Mode describes how NR participates in the session.
type Mode string

const (
	ModeNSA     Mode = "NSA"      // LTE anchor plus NR carriers
	ModeSA      Mode = "SA"       // NR carriers without an LTE anchor
	ModeLTEOnly Mode = "LTE-only" // aggregation of LTE carriers only
	ModeNone    Mode = "none"     // fewer than two carriers
)

// Carrier-count classes.
const (
	Class2CC     = "2CC"
	Class3CC     = "3CC"
	Class4CC     = "4CC"
	Class5CCPlus = "5CC+"
)

// Heuristics behind the bandwidth and throughput estimates. Neither is derived
// from the air interface; reports must present the results as estimates.
const (
	NRBandwidthMHz   = 100.0
	ThroughputPerMHz = 7.5 // Mbps per MHz of aggregate bandwidth
)

// Session is the carrier aggregation summary of one scan.
type Session struct {
	Active       bool              `json:"active"`
	CarrierClass *string           `json:"carrier_class"`
	PCell        *cell.Normalized  `json:"pcell"`
	SCells       []cell.Normalized `json:"scells"`
	NRCells      []cell.Normalized `json:"nr_cells"`
	Bands        []string          `json:"bands"`

	TotalBandwidthMHz       float64 `json:"total_bandwidth_mhz"`
	EstimatedThroughputMbps float64 `json:"estimated_throughput_mbps"`
	Mode                    Mode    `json:"mode"`

	// ExtraRegistered counts LTE cells flagged registered after the first one.
	// They are carried as SCells; a non-zero value is a data-quality warning.
	ExtraRegistered int `json:"extra_registered,omitempty"`
	// Combo is the matching entry of the known-combination catalog, if any.
	Combo *Combo `json:"known_combo,omitempty"`
}

// TotalCarriers returns PCell + SCells + NR cells.
func (s Session) TotalCarriers() int {
	n := len(s.SCells) + len(s.NRCells)
	if s.PCell != nil {
		n++
	}
	return n
}

// Class returns the carrier class or "" when the session is inactive.
func (s Session) Class() string {
	if s.CarrierClass == nil {
		return ""
	}
	return *s.CarrierClass
}

// classify maps a carrier count to its class; counts below two are inactive.
func classify(total int) *string {
	var class string
	switch {
	case total < 2:
		return nil
	case total == 2:
		class = Class2CC
	case total == 3:
		class = Class3CC
	case total == 4:
		class = Class4CC
	default:
		class = Class5CCPlus
	}
	return &class
}
