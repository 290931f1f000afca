package classify

import (
	"math"
	"testing"

	"cellintel/ca"
	"cellintel/cell"
)

func jioLTE() cell.RawRecord {
	return cell.RawRecord{
		RAT:           cell.LTE,
		TypeTag:       "lte",
		Registered:    true,
		NetworkCode:   405,
		CarrierCode:   860,
		ChannelNumber: cell.Int(1300),
		CompositeID:   cell.Int64(12345),
		TimingAdvance: cell.Int(10),
		Signal:        cell.Signal{RSRP: cell.Float(-90)},
	}
}

func TestEndToEndLTE(t *testing.T) {
	res := NewEngine(nil, nil).Classify([]cell.RawRecord{jioLTE()})
	if len(res.Cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(res.Cells))
	}
	c := res.Cells[0]
	if c.Operator != "Jio" {
		t.Fatalf("operator=%q", c.Operator)
	}
	if c.Band.ID != "B3" || c.Band.FrequencyMHz != 1800 {
		t.Fatalf("band=%+v", c.Band)
	}
	if c.SiteID == nil || c.SectorID == nil || *c.SiteID != 48 || *c.SectorID != 57 {
		t.Fatalf("site/sector=%v/%v", c.SiteID, c.SectorID)
	}
	if c.DistanceM == nil || math.Abs(*c.DistanceM-781.2) > 1e-9 {
		t.Fatalf("distance=%v", c.DistanceM)
	}
	if c.DistanceMethod != cell.DistanceTimingAdvance {
		t.Fatalf("distance method=%q", c.DistanceMethod)
	}
	// RSRP -90 is not > -90, so it lands in the 20-point bucket.
	if c.QualityScore != 20 || c.Quality != "Poor" {
		t.Fatalf("quality=%d/%s", c.QualityScore, c.Quality)
	}
	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	records := []cell.RawRecord{
		{RAT: cell.Unknown, TypeTag: "cdma"},
		jioLTE(),
		{RAT: cell.Unknown},
	}
	res := NewEngine(nil, nil).Classify(records)
	if len(res.Cells) != 1 {
		t.Fatalf("expected 1 surviving cell, got %d", len(res.Cells))
	}
	if res.Skipped() != 2 {
		t.Fatalf("expected 2 skipped, got %d", res.Skipped())
	}
	if res.Issues[0].Index != 0 || res.Issues[0].Kind != MalformedRecord {
		t.Fatalf("unexpected first issue %+v", res.Issues[0])
	}
	if res.Issues[1].Index != 2 {
		t.Fatalf("unexpected second issue %+v", res.Issues[1])
	}
}

func TestUnknownBandIsKept(t *testing.T) {
	rec := jioLTE()
	rec.ChannelNumber = cell.Int(5000)
	res := NewEngine(nil, nil).Classify([]cell.RawRecord{rec})
	if len(res.Cells) != 1 {
		t.Fatalf("unknown band must not drop the cell")
	}
	if res.Cells[0].Band.ID != cell.UnknownBandID {
		t.Fatalf("band=%+v", res.Cells[0].Band)
	}
	if len(res.Issues) != 1 || res.Issues[0].Kind != UnknownBand || res.Issues[0].Skipped {
		t.Fatalf("issues=%v", res.Issues)
	}
}

func TestNegativeTAFallsBack(t *testing.T) {
	rec := jioLTE()
	rec.TimingAdvance = cell.Int(-1)
	rec.Signal.RSRP = cell.Float(-95)
	res := NewEngine(nil, nil).Classify([]cell.RawRecord{rec})
	c := res.Cells[0]
	if c.DistanceM == nil || c.DistanceMethod != cell.DistancePathLoss {
		t.Fatalf("expected path-loss estimate, got %v/%q", c.DistanceM, c.DistanceMethod)
	}
	if len(res.Issues) != 1 || res.Issues[0].Kind != InvalidTimingAdvance {
		t.Fatalf("issues=%v", res.Issues)
	}
}

func TestMissingMetricsStayUnknown(t *testing.T) {
	rec := cell.RawRecord{
		RAT:           cell.LTE,
		NetworkCode:   404,
		CarrierCode:   10,
		ChannelNumber: cell.Int(100),
	}
	res := NewEngine(nil, nil).Classify([]cell.RawRecord{rec})
	c := res.Cells[0]
	if c.DistanceM != nil {
		t.Fatalf("distance must stay unknown, got %v", *c.DistanceM)
	}
	if c.SiteID != nil || c.SectorID != nil {
		t.Fatalf("site/sector must stay unknown")
	}
	if c.Quality != "Unknown" {
		t.Fatalf("quality=%q", c.Quality)
	}
	if len(res.Issues) != 1 || res.Issues[0].Kind != MissingMetric {
		t.Fatalf("issues=%v", res.Issues)
	}
}

func TestOtherRATs(t *testing.T) {
	records := []cell.RawRecord{
		{
			RAT:           cell.GSM,
			NetworkCode:   404,
			CarrierCode:   34,
			ChannelNumber: cell.Int(62),
			CompositeID:   cell.Int64(4242),
			TimingAdvance: cell.Int(2),
			Signal:        cell.Signal{RSSI: cell.Float(-75)},
		},
		{
			RAT:           cell.WCDMA,
			NetworkCode:   404,
			CarrierCode:   11,
			ChannelNumber: cell.Int(10688),
			CompositeID:   cell.Int64(65536*3 + 17),
			Signal:        cell.Signal{RSCP: cell.Float(-88)},
		},
		{
			RAT:           cell.NR,
			NetworkCode:   405,
			CarrierCode:   860,
			ChannelNumber: cell.Int(636666),
			CompositeID:   cell.Int64(4096*9 + 1),
			Signal:        cell.Signal{SSRSRP: cell.Float(-75), SSRSRQ: cell.Float(-8), SSSINR: cell.Float(25)},
		},
	}
	res := NewEngine(nil, nil).Classify(records)
	if len(res.Cells) != 3 || len(res.Issues) != 0 {
		t.Fatalf("cells=%d issues=%v", len(res.Cells), res.Issues)
	}
	gsm, wcdma, nr := res.Cells[0], res.Cells[1], res.Cells[2]
	if gsm.Operator != "BSNL" || gsm.Band.ID != "GSM900" || gsm.DistanceM == nil || *gsm.DistanceM != 1100 {
		t.Fatalf("gsm=%+v", gsm)
	}
	if gsm.SiteID != nil {
		t.Fatalf("GSM ids are not decomposed")
	}
	if gsm.Quality != "Unknown" {
		t.Fatalf("GSM quality=%q", gsm.Quality)
	}
	if wcdma.SiteID == nil || *wcdma.SiteID != 3 || *wcdma.SectorID != 17 {
		t.Fatalf("wcdma site/sector=%v/%v", wcdma.SiteID, wcdma.SectorID)
	}
	if wcdma.DistanceM != nil {
		t.Fatalf("WCDMA has no distance model")
	}
	if nr.Band.ID != "n78" || nr.Quality != "Excellent" || nr.QualityScore != 100 {
		t.Fatalf("nr=%+v", nr)
	}
	if nr.DistanceMethod != cell.DistancePathLoss {
		t.Fatalf("NR distance should use SS-RSRP path loss, got %q", nr.DistanceMethod)
	}
}

func TestReportedBandwidth(t *testing.T) {
	rec := jioLTE()
	rec.BandwidthKHz = cell.Int(15000)
	res := NewEngine(nil, nil).Classify([]cell.RawRecord{rec})
	if bw := res.Cells[0].BandwidthMHz; bw == nil || *bw != 15 {
		t.Fatalf("bandwidth=%v", bw)
	}
}

func TestClassifyScan(t *testing.T) {
	scell := jioLTE()
	scell.Registered = false
	scell.ChannelNumber = cell.Int(40000)
	nr := cell.RawRecord{RAT: cell.NR, NetworkCode: 405, CarrierCode: 860, ChannelNumber: cell.Int(636666)}
	records := []cell.RawRecord{jioLTE(), scell, nr, {RAT: cell.Unknown}}
	scan := ClassifyScan(NewEngine(nil, nil), ca.NewDetector(ca.IndiaCatalog()), records)
	if scan.Skipped() != 1 {
		t.Fatalf("skipped=%d", scan.Skipped())
	}
	if !scan.Session.Active || scan.Session.Class() != ca.Class3CC || scan.Session.Mode != ca.ModeNSA {
		t.Fatalf("session=%+v", scan.Session)
	}
	if scan.Session.Combo == nil {
		t.Fatalf("expected Jio B3+B40+n78 catalog match")
	}
}

func TestEmptyInput(t *testing.T) {
	scan := ClassifyScan(NewEngine(nil, nil), nil, nil)
	if len(scan.Cells) != 0 || len(scan.Issues) != 0 {
		t.Fatalf("unexpected output %+v", scan.Result)
	}
	if scan.Session.Active || scan.Session.Mode != ca.ModeNone {
		t.Fatalf("session=%+v", scan.Session)
	}
}
