// Package classify turns one scan's raw cell records into normalized cells.
// It wires the band, operator, identifier, distance and quality components
// together and reports per-record issues instead of failing the batch.
package classify

import (
	"fmt"

	"cellintel/band"
	"cellintel/ca"
	"cellintel/cell"
	"cellintel/cellid"
	"cellintel/distance"
	"cellintel/operator"
	"cellintel/quality"
)

// Engine holds the immutable lookup tables used for classification. One engine
// may serve any number of goroutines.
type Engine struct {
	bands     *band.Resolver
	operators *operator.Table
}

// NewEngine returns an engine over the given tables. Nil arguments fall back to
// the default resolver (n78 preferred) and the built-in India operator table.
func NewEngine(bands *band.Resolver, operators *operator.Table) *Engine {
	if bands == nil {
		bands = band.NewResolver(band.PreferN78)
	}
	if operators == nil {
		operators = operator.India()
	}
	return &Engine{bands: bands, operators: operators}
}

// Operators exposes the operator table the engine resolves against.
func (e *Engine) Operators() *operator.Table {
	return e.operators
}

// Result is the outcome of classifying one scan.
type Result struct {
	Cells  []cell.Normalized `json:"cells"`
	Issues []Issue           `json:"issues,omitempty"`
}

// Skipped returns the number of records that produced no cell.
func (r Result) Skipped() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Skipped {
			n++
		}
	}
	return n
}

// Classify normalizes every record in order. Malformed records are skipped and
// reported; everything else yields exactly one cell. It never fails.
func (e *Engine) Classify(records []cell.RawRecord) Result {
	res := Result{Cells: make([]cell.Normalized, 0, len(records))}
	for i, rec := range records {
		if !rec.RAT.Valid() {
			res.Issues = append(res.Issues, Issue{
				Index:   i,
				Kind:    MalformedRecord,
				Detail:  fmt.Sprintf("unsupported type tag %q", rec.TypeTag),
				Skipped: true,
			})
			continue
		}
		c, issues := e.normalize(i, rec)
		res.Cells = append(res.Cells, c)
		res.Issues = append(res.Issues, issues...)
	}
	return res
}

func (e *Engine) normalize(index int, rec cell.RawRecord) (cell.Normalized, []Issue) {
	var issues []Issue
	c := cell.Normalized{
		RawRecord: rec,
		Operator:  e.operators.Resolve(rec.NetworkCode, rec.CarrierCode),
		Band:      e.bands.Resolve(rec.RAT, rec.ChannelNumber),
	}
	if !c.Band.Known() {
		detail := "no channel number"
		if rec.ChannelNumber != nil {
			detail = fmt.Sprintf("%s channel %d outside known ranges", rec.RAT, *rec.ChannelNumber)
		}
		issues = append(issues, Issue{Index: index, Kind: UnknownBand, Detail: detail})
	}
	if rec.RAT == cell.LTE {
		c.BandwidthMHz = band.BandwidthFromKHz(rec.BandwidthKHz)
	}

	c.SiteID, c.SectorID = cellid.Decompose(rec.RAT, rec.CompositeID)

	if rec.TimingAdvance != nil && *rec.TimingAdvance < 0 {
		issues = append(issues, Issue{
			Index:  index,
			Kind:   InvalidTimingAdvance,
			Detail: fmt.Sprintf("timing advance %d", *rec.TimingAdvance),
		})
	}
	if est, ok := distance.EstimateDetailed(rec.RAT, rec.TimingAdvance, rec.ReferencePower(), c.Band.Frequency()); ok {
		meters := est.Meters
		c.DistanceM = &meters
		c.DistanceMethod = est.Method
	}

	rsrp, rsrq, sinr := rec.QualityInputs()
	score, label := quality.Score(rsrp, rsrq, sinr)
	c.QualityScore = score
	c.Quality = string(label)
	if !hasAnyMetric(rec) {
		issues = append(issues, Issue{Index: index, Kind: MissingMetric, Detail: "no signal metrics reported"})
	}
	return c, issues
}

func hasAnyMetric(rec cell.RawRecord) bool {
	s := rec.Signal
	switch rec.RAT {
	case cell.LTE:
		return s.RSRP != nil || s.RSRQ != nil || s.RSSI != nil || s.SINR != nil || s.CQI != nil
	case cell.NR:
		return s.SSRSRP != nil || s.SSRSRQ != nil || s.SSSINR != nil
	case cell.GSM:
		return s.RSSI != nil
	case cell.WCDMA:
		return s.RSCP != nil || s.EcNo != nil
	case cell.Unknown:
		return false
	}
	return false
}

// Scan is the full per-scan outcome: classified cells, issues and the CA
// session derived from them.
type Scan struct {
	Result
	Session ca.Session `json:"ca_session"`
}

// ClassifyScan classifies records and runs CA detection over the result.
func ClassifyScan(e *Engine, d *ca.Detector, records []cell.RawRecord) Scan {
	res := e.Classify(records)
	return Scan{Result: res, Session: d.Detect(res.Cells)}
}
