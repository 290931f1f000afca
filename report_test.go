package main

import (
	"strings"
	"testing"

	"cellintel/ca"
	"cellintel/cell"
	"cellintel/classify"
	"cellintel/towerdb"
)

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		m      float64
		method cell.DistanceMethod
		want   string
	}{
		{781.2, cell.DistanceTimingAdvance, "~781 m (timing advance)"},
		{9760, cell.DistancePathLoss, "~9.76 km (approx., path loss)"},
		{12, cell.DistanceNone, "12 m"},
	}
	for _, tc := range cases {
		if got := formatDistance(tc.m, tc.method); got != tc.want {
			t.Errorf("formatDistance(%v, %q) = %q, want %q", tc.m, tc.method, got, tc.want)
		}
	}
}

func TestSignalLineShowsBarsAndQuality(t *testing.T) {
	c := cell.Normalized{
		RawRecord:    cell.RawRecord{RAT: cell.LTE, Signal: cell.Signal{RSRP: cell.Float(-85), RSRQ: cell.Float(-9)}},
		QualityScore: 60,
		Quality:      "Good",
	}
	got := signalLine(c)
	if got != "RSRP -85 dBm  RSRQ -9 dB  quality Good (60)  [###--]" {
		t.Fatalf("signalLine = %q", got)
	}
	gsm := cell.Normalized{RawRecord: cell.RawRecord{RAT: cell.GSM, Signal: cell.Signal{RSSI: cell.Float(-70)}}, Quality: "Unknown"}
	if got := signalLine(gsm); got != "RSSI -70 dBm" {
		t.Fatalf("gsm signalLine = %q", got)
	}
}

func TestWriteTextInactiveSession(t *testing.T) {
	lte := cell.Normalized{RawRecord: cell.RawRecord{RAT: cell.LTE, Registered: true}, Operator: "Vi", Band: cell.Band{ID: "B8", FrequencyMHz: 900, Duplex: cell.FDD}}
	report := newScanReport("scan", classify.Scan{
		Result:  classify.Result{Cells: []cell.Normalized{lte}},
		Session: ca.Session{PCell: &lte, Mode: ca.ModeNone},
	}, []towerdb.Fix{{Index: 0, Tower: towerdb.Tower{Key: towerdb.Key{MCC: 404, MNC: 20, Area: 1, CellID: 2}, Radio: "LTE", Lat: 1, Lon: 2}}})
	var b strings.Builder
	if err := writeText(&b, report); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"== scan: 1 cell ==",
		"Carrier aggregation: inactive (1 carrier)",
		"Operators: Vi=1",
		"Networks: LTE=1",
		"cell 1 -> 404-20-1-2 LTE at 1.00000,2.00000",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteTextEmptyScanPluralizes(t *testing.T) {
	var b strings.Builder
	if err := writeText(&b, newScanReport("empty", classify.Scan{}, nil)); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	out := b.String()
	for _, want := range []string{"== empty: 0 cells ==", "no data"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	var session strings.Builder
	writeSessionText(&session, ca.Session{Mode: ca.ModeNone})
	if got := session.String(); got != "Carrier aggregation: inactive (0 carriers)\n" {
		t.Fatalf("session text = %q", got)
	}
}

func TestScanRow(t *testing.T) {
	c := cell.Normalized{
		RawRecord: cell.RawRecord{RAT: cell.NR, Registered: true, PhysicalCellID: cell.Int(55), ChannelNumber: cell.Int(636666),
			Signal: cell.Signal{SSRSRP: cell.Float(-88)}},
		Operator: "Jio", Band: cell.Band{ID: "n78"}, Quality: "Good",
		SiteID: cell.Int64(100), SectorID: cell.Int64(12),
	}
	got := scanRow(0, c)
	want := []string{"1*", "NR", "Jio", "n78", "55", "636666", "-88 dBm", "Good", "-", "100/12"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("scanRow = %q, want %q", got, want)
	}
}
