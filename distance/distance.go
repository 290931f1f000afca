// Package distance estimates how far a serving or neighbour cell's transmitter
// is from the device. Timing advance is preferred; a free-space path-loss
// inversion is the fallback and only ever an approximation.
package distance

import (
	"math"

	"cellintel/cell"
)

const (
	// LTEMetersPerTA is one LTE timing-advance step (16 Ts) of round-trip delay.
	LTEMetersPerTA = 78.12
	// GSMMetersPerTA is one GSM timing-advance step (one bit period).
	GSMMetersPerTA = 550.0

	// MacroTxPowerDBm is the assumed transmit power of a macro cell.
	MacroTxPowerDBm = 43.0
	// MaxPathLossRSRP is the strongest RSRP the path-loss model accepts; above
	// it the device is too close for the model to mean anything.
	MaxPathLossRSRP = -40.0
	// DefaultFrequencyMHz is used by the path-loss model when the band is unknown.
	DefaultFrequencyMHz = 1800
	// fsplConstantKmMHz is the free-space path-loss constant for km and MHz.
	fsplConstantKmMHz = 32.44
)

// Result is a distance estimate and the model that produced it.
type Result struct {
	Meters float64
	Method cell.DistanceMethod
}

// Approximate reports whether the estimate came from the path-loss heuristic.
func (r Result) Approximate() bool {
	return r.Method == cell.DistancePathLoss
}

// Estimate returns the distance in meters, or false when neither model applies.
func Estimate(rat cell.RAT, ta *int, rsrp *float64, freqMHz *int) (float64, bool) {
	res, ok := EstimateDetailed(rat, ta, rsrp, freqMHz)
	return res.Meters, ok
}

// EstimateDetailed is Estimate with the producing model attached.
func EstimateDetailed(rat cell.RAT, ta *int, rsrp *float64, freqMHz *int) (Result, bool) {
	if m, ok := TimingAdvance(rat, ta); ok {
		return Result{Meters: m, Method: cell.DistanceTimingAdvance}, true
	}
	if m, ok := PathLoss(rsrp, freqMHz); ok {
		return Result{Meters: m, Method: cell.DistancePathLoss}, true
	}
	return Result{}, false
}

// TimingAdvance converts a timing advance to meters. Only LTE and GSM define a
// usable step; absent or negative values are invalid.
func TimingAdvance(rat cell.RAT, ta *int) (float64, bool) {
	if ta == nil || *ta < 0 {
		return 0, false
	}
	switch rat {
	case cell.LTE:
		return float64(*ta) * LTEMetersPerTA, true
	case cell.GSM:
		return float64(*ta) * GSMMetersPerTA, true
	case cell.NR, cell.WCDMA, cell.Unknown:
		return 0, false
	}
	return 0, false
}

// PathLoss inverts the free-space path-loss equation assuming a 43 dBm macro
// transmitter: d_km = 10^((43 - rsrp - 20*log10(f) - 32.44) / 20). It ignores
// antenna gains, cable loss, terrain and clutter, so real distances are usually
// far shorter. A nil or non-positive frequency uses DefaultFrequencyMHz.
func PathLoss(rsrp *float64, freqMHz *int) (float64, bool) {
	if rsrp == nil || math.IsNaN(*rsrp) || *rsrp > MaxPathLossRSRP {
		return 0, false
	}
	freq := float64(DefaultFrequencyMHz)
	if freqMHz != nil && *freqMHz > 0 {
		freq = float64(*freqMHz)
	}
	pathLoss := MacroTxPowerDBm - *rsrp
	km := math.Pow(10, (pathLoss-20*math.Log10(freq)-fsplConstantKmMHz)/20)
	m := km * 1000
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return 0, false
	}
	return m, true
}
