package ca

import (
	"cellintel/band"
	"cellintel/cell"
	"cellintel/operator"
)

// Detector builds Sessions. The zero value works and skips combo matching.
type Detector struct {
	catalog *Catalog
}

// NewDetector returns a detector that annotates sessions with entries from
// catalog. A nil catalog disables annotation.
func NewDetector(catalog *Catalog) *Detector {
	return &Detector{catalog: catalog}
}

// Detect summarizes one scan. GSM, WCDMA and unknown cells do not take part.
// The first registered LTE cell is the PCell; every other LTE cell, including
// any further registered one, is an SCell.
func (d *Detector) Detect(cells []cell.Normalized) Session {
	s := Session{
		SCells:  make([]cell.Normalized, 0),
		NRCells: make([]cell.Normalized, 0),
		Bands:   make([]string, 0),
		Mode:    ModeNone,
	}

	for i := range cells {
		c := cells[i]
		switch c.RAT {
		case cell.LTE:
			if c.Registered && s.PCell == nil {
				pcell := c
				s.PCell = &pcell
				continue
			}
			if c.Registered {
				s.ExtraRegistered++
			}
			s.SCells = append(s.SCells, c)
		case cell.NR:
			s.NRCells = append(s.NRCells, c)
		case cell.GSM, cell.WCDMA, cell.Unknown:
		}
	}

	if s.PCell != nil {
		s.addBand(s.PCell.Band)
		s.TotalBandwidthMHz += lteBandwidth(*s.PCell)
	}
	for _, c := range s.SCells {
		s.addBand(c.Band)
		s.TotalBandwidthMHz += lteBandwidth(c)
	}
	for _, c := range s.NRCells {
		s.addBand(c.Band)
		s.TotalBandwidthMHz += NRBandwidthMHz
	}
	s.EstimatedThroughputMbps = s.TotalBandwidthMHz * ThroughputPerMHz

	s.CarrierClass = classify(s.TotalCarriers())
	s.Active = s.CarrierClass != nil
	s.Mode = mode(s)

	if d != nil && d.catalog != nil && s.Active {
		if combo, ok := d.catalog.Match(sessionOperator(s), s.Bands); ok {
			s.Combo = &combo
		}
	}
	return s
}

func (s *Session) addBand(b cell.Band) {
	if b.Known() {
		s.Bands = append(s.Bands, b.ID)
	}
}

func lteBandwidth(c cell.Normalized) float64 {
	if c.BandwidthMHz != nil && *c.BandwidthMHz > 0 {
		return *c.BandwidthMHz
	}
	return band.DefaultLTEBandwidthMHz(c.Band.ID)
}

func mode(s Session) Mode {
	if !s.Active {
		return ModeNone
	}
	switch {
	case s.PCell != nil && len(s.NRCells) > 0:
		return ModeNSA
	case len(s.NRCells) > 0:
		return ModeSA
	default:
		return ModeLTEOnly
	}
}

// sessionOperator picks the operator whose catalog applies: the PCell's, else
// the first known operator among the other carriers.
func sessionOperator(s Session) string {
	if s.PCell != nil && s.PCell.Operator != operator.Unknown {
		return s.PCell.Operator
	}
	for _, group := range [][]cell.Normalized{s.SCells, s.NRCells} {
		for _, c := range group {
			if c.Operator != "" && c.Operator != operator.Unknown {
				return c.Operator
			}
		}
	}
	return operator.Unknown
}
