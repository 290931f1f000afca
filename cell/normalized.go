package cell

import "strconv"

// Duplex is the duplexing scheme of a band.
type Duplex string

const (
	FDD Duplex = "FDD"
	TDD Duplex = "TDD"
)

// UnknownBandID is the identifier carried by a band that did not resolve.
const UnknownBandID = "Unknown"

// Band describes the frequency band a channel number falls in.
type Band struct {
	ID           string `json:"id"`                      // "B3", "n78", "GSM900"
	FrequencyMHz int    `json:"frequency_mhz,omitempty"` // nominal, 0 only when unknown
	Duplex       Duplex `json:"duplex,omitempty"`
	// Alternates lists other band IDs that share the same channel span.
	Alternates []string `json:"alternates,omitempty"`
}

// UnknownBand is returned for channel numbers outside every known range.
var UnknownBand = Band{ID: UnknownBandID}

// Known reports whether the band resolved to a real band entry.
func (b Band) Known() bool {
	return b.ID != "" && b.ID != UnknownBandID
}

// Frequency returns the nominal frequency, or nil when the band is unknown.
func (b Band) Frequency() *int {
	if !b.Known() || b.FrequencyMHz <= 0 {
		return nil
	}
	f := b.FrequencyMHz
	return &f
}

// String renders the band for reports, e.g. "B3 (1800 MHz FDD)".
func (b Band) String() string {
	if !b.Known() {
		return UnknownBandID
	}
	out := b.ID
	if b.FrequencyMHz > 0 {
		out += " (" + strconv.Itoa(b.FrequencyMHz) + " MHz"
		if b.Duplex != "" {
			out += " " + string(b.Duplex)
		}
		out += ")"
	}
	return out
}

// DistanceMethod names the model that produced a distance estimate.
type DistanceMethod string

const (
	DistanceNone          DistanceMethod = ""
	DistanceTimingAdvance DistanceMethod = "timing_advance"
	// DistancePathLoss marks the free-space approximation; consumers must
	// present it as approximate.
	DistancePathLoss DistanceMethod = "path_loss"
)

// Normalized is the classified view of one RawRecord.
type Normalized struct {
	RawRecord
	Operator     string   `json:"operator"`
	Band         Band     `json:"band"`
	BandwidthMHz *float64 `json:"bandwidth_mhz,omitempty"`
	// SiteID and SectorID are both nil or both set.
	SiteID         *int64         `json:"site_id,omitempty"`
	SectorID       *int64         `json:"sector_id,omitempty"`
	DistanceM      *float64       `json:"distance_m,omitempty"`
	DistanceMethod DistanceMethod `json:"distance_method,omitempty"`
	QualityScore   int            `json:"quality_score"`
	Quality        string         `json:"quality"`
}
