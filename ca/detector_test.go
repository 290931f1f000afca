package ca

import (
	"reflect"
	"testing"

	"cellintel/cell"

	jsoniter "github.com/json-iterator/go"
)

func lteCell(bandID string, registered bool) cell.Normalized {
	return cell.Normalized{
		RawRecord: cell.RawRecord{RAT: cell.LTE, Registered: registered, NetworkCode: 405, CarrierCode: 860},
		Operator:  "Jio",
		Band:      cell.Band{ID: bandID, FrequencyMHz: 1800, Duplex: cell.FDD},
	}
}

func nrCell(bandID string) cell.Normalized {
	return cell.Normalized{
		RawRecord: cell.RawRecord{RAT: cell.NR, NetworkCode: 405, CarrierCode: 860},
		Operator:  "Jio",
		Band:      cell.Band{ID: bandID, FrequencyMHz: 3500, Duplex: cell.TDD},
	}
}

func TestDetectFourCarrierNSA(t *testing.T) {
	cells := []cell.Normalized{
		lteCell("B3", true),
		lteCell("B40", false),
		lteCell("B41", false),
		nrCell("n78"),
	}
	s := NewDetector(nil).Detect(cells)
	if !s.Active || s.Class() != Class4CC || s.Mode != ModeNSA {
		t.Fatalf("expected active 4CC NSA, got active=%v class=%q mode=%s", s.Active, s.Class(), s.Mode)
	}
	if s.TotalCarriers() != 4 {
		t.Fatalf("expected 4 carriers, got %d", s.TotalCarriers())
	}
	if s.PCell == nil || s.PCell.Band.ID != "B3" {
		t.Fatalf("expected B3 PCell, got %+v", s.PCell)
	}
	if len(s.SCells) != 2 || len(s.NRCells) != 1 {
		t.Fatalf("expected 2 SCells and 1 NR cell, got %d/%d", len(s.SCells), len(s.NRCells))
	}
	wantBands := []string{"B3", "B40", "B41", "n78"}
	if !reflect.DeepEqual(s.Bands, wantBands) {
		t.Fatalf("bands=%v, want %v", s.Bands, wantBands)
	}
	// 20 + 20 + 20 + 100
	if s.TotalBandwidthMHz != 160 {
		t.Fatalf("total bandwidth=%v, want 160", s.TotalBandwidthMHz)
	}
	if s.EstimatedThroughputMbps != 1200 {
		t.Fatalf("throughput=%v, want 1200", s.EstimatedThroughputMbps)
	}
}

func TestDetectEmpty(t *testing.T) {
	s := NewDetector(IndiaCatalog()).Detect(nil)
	if s.Active || s.CarrierClass != nil || s.Mode != ModeNone {
		t.Fatalf("expected inactive session, got %+v", s)
	}
	if s.PCell != nil || s.TotalBandwidthMHz != 0 || s.Combo != nil {
		t.Fatalf("expected empty session, got %+v", s)
	}
}

func TestDetectModes(t *testing.T) {
	cases := []struct {
		name   string
		cells  []cell.Normalized
		active bool
		class  string
		mode   Mode
	}{
		{"single pcell", []cell.Normalized{lteCell("B3", true)}, false, "", ModeNone},
		{"single nr", []cell.Normalized{nrCell("n78")}, false, "", ModeNone},
		{"nr only", []cell.Normalized{nrCell("n78"), nrCell("n28")}, true, Class2CC, ModeSA},
		{"lte only", []cell.Normalized{lteCell("B3", true), lteCell("B40", false), lteCell("B5", false)}, true, Class3CC, ModeLTEOnly},
		{"lte without pcell", []cell.Normalized{lteCell("B3", false), lteCell("B40", false)}, true, Class2CC, ModeLTEOnly},
		{"five carriers", []cell.Normalized{lteCell("B3", true), lteCell("B40", false), lteCell("B41", false), lteCell("B5", false), nrCell("n78"), nrCell("n28")}, true, Class5CCPlus, ModeNSA},
	}
	for _, tc := range cases {
		s := NewDetector(nil).Detect(tc.cells)
		if s.Active != tc.active || s.Class() != tc.class || s.Mode != tc.mode {
			t.Errorf("%s: got active=%v class=%q mode=%s", tc.name, s.Active, s.Class(), s.Mode)
		}
	}
}

func TestDetectIgnoresOtherRATs(t *testing.T) {
	gsm := cell.Normalized{RawRecord: cell.RawRecord{RAT: cell.GSM, Registered: true}, Band: cell.Band{ID: "GSM900"}}
	wcdma := cell.Normalized{RawRecord: cell.RawRecord{RAT: cell.WCDMA}, Band: cell.Band{ID: "UMTS2100"}}
	s := NewDetector(nil).Detect([]cell.Normalized{gsm, lteCell("B3", true), wcdma})
	if s.Active || s.TotalCarriers() != 1 {
		t.Fatalf("GSM/WCDMA must not count as carriers, got %d", s.TotalCarriers())
	}
	if len(s.Bands) != 1 || s.Bands[0] != "B3" {
		t.Fatalf("bands=%v", s.Bands)
	}
}

func TestDetectDemotesSecondRegistered(t *testing.T) {
	first := lteCell("B3", true)
	first.PhysicalCellID = cell.Int(101)
	second := lteCell("B40", true)
	second.PhysicalCellID = cell.Int(202)
	s := NewDetector(nil).Detect([]cell.Normalized{first, second})
	if s.PCell == nil || *s.PCell.PhysicalCellID != 101 {
		t.Fatalf("first registered cell must be PCell, got %+v", s.PCell)
	}
	if len(s.SCells) != 1 || *s.SCells[0].PhysicalCellID != 202 {
		t.Fatalf("second registered cell must be an SCell, got %+v", s.SCells)
	}
	if s.ExtraRegistered != 1 {
		t.Fatalf("expected ExtraRegistered=1, got %d", s.ExtraRegistered)
	}
}

func TestBandwidthUsesReportedValueThenDefaults(t *testing.T) {
	reported := lteCell("B3", true)
	reported.BandwidthMHz = cell.Float(5)
	unknown := lteCell(cell.UnknownBandID, false)
	unknown.Band = cell.UnknownBand
	b1 := lteCell("B1", false)
	s := NewDetector(nil).Detect([]cell.Normalized{reported, unknown, b1})
	// 5 (reported) + 10 (unknown fallback) + 10 (B1 default)
	if s.TotalBandwidthMHz != 25 {
		t.Fatalf("total bandwidth=%v, want 25", s.TotalBandwidthMHz)
	}
	if s.EstimatedThroughputMbps != 25*ThroughputPerMHz {
		t.Fatalf("throughput=%v", s.EstimatedThroughputMbps)
	}
	if len(s.Bands) != 2 {
		t.Fatalf("unknown bands must not be listed, got %v", s.Bands)
	}
}

func TestDetectMatchesCatalog(t *testing.T) {
	cells := []cell.Normalized{nrCell("n78"), lteCell("B40", false), lteCell("B3", true)}
	s := NewDetector(IndiaCatalog()).Detect(cells)
	if s.Combo == nil {
		t.Fatalf("expected catalog match for Jio B3+B40+n78")
	}
	if s.Combo.Class != ClassNSA || s.Combo.Operator != "Jio" {
		t.Fatalf("unexpected combo %+v", s.Combo)
	}

	cells = []cell.Normalized{lteCell("B1", true), lteCell("B8", false)}
	s = NewDetector(IndiaCatalog()).Detect(cells)
	if s.Combo != nil {
		t.Fatalf("Jio does not deploy B1+B8, got %+v", s.Combo)
	}
	if got := IndiaCatalog().ForOperator("vi"); len(got) != 4 {
		t.Fatalf("expected 4 Vi combos, got %d", len(got))
	}
}

func TestSessionJSONRoundTrip(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	pcell := lteCell("B3", true)
	pcell.SiteID = cell.Int64(48)
	pcell.SectorID = cell.Int64(57)
	pcell.DistanceM = cell.Float(781.2)
	pcell.DistanceMethod = cell.DistanceTimingAdvance
	in := NewDetector(IndiaCatalog()).Detect([]cell.Normalized{pcell, lteCell("B40", false), nrCell("n78")})

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}

	var empty Session
	data, err = json.Marshal(NewDetector(nil).Detect(nil))
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	if err := json.Unmarshal(data, &empty); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if empty.CarrierClass != nil || empty.Mode != ModeNone {
		t.Fatalf("empty session did not survive round trip: %+v", empty)
	}
}
