package band

// Per-band LTE channel bandwidths (MHz) typical of Indian deployments. They are
// unsourced deployment heuristics used only when the modem does not report a
// bandwidth, not a property of the band itself.
var defaultLTEBandwidthMHz = map[string]float64{
	"B1":  10,
	"B3":  20,
	"B5":  10,
	"B8":  10,
	"B40": 20,
	"B41": 20,
}

// FallbackLTEBandwidthMHz applies to LTE bands missing from the default map,
// including unresolved bands.
const FallbackLTEBandwidthMHz = 10.0

// DefaultLTEBandwidthMHz returns the assumed channel bandwidth for an LTE band ID.
func DefaultLTEBandwidthMHz(bandID string) float64 {
	if bw, ok := defaultLTEBandwidthMHz[bandID]; ok {
		return bw
	}
	return FallbackLTEBandwidthMHz
}

// BandwidthFromKHz converts a modem-reported bandwidth to MHz. Non-positive
// values are treated as not reported.
func BandwidthFromKHz(khz *int) *float64 {
	if khz == nil || *khz <= 0 {
		return nil
	}
	mhz := float64(*khz) / 1000
	return &mhz
}

var rbBandwidthMHz = map[int]float64{
	6:   1.4,
	15:  3,
	25:  5,
	50:  10,
	75:  15,
	100: 20,
}

// BandwidthFromRB maps an LTE downlink resource-block count to its channel
// bandwidth. Counts that do not correspond to a standard bandwidth return false.
func BandwidthFromRB(nrb int) (float64, bool) {
	bw, ok := rbBandwidthMHz[nrb]
	return bw, ok
}
