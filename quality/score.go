// Package quality folds RSRP, RSRQ and SINR into a 0-100 score and a label.
package quality

// Label is the categorical signal quality.
type Label string

const (
	Excellent Label = "Excellent"
	Good      Label = "Good"
	Fair      Label = "Fair"
	Poor      Label = "Poor"
	VeryPoor  Label = "Very Poor"
	// Unknown is reported when none of the three metrics was measured.
	Unknown Label = "Unknown"
)

type bucket struct {
	above  float64
	points int
}

var (
	rsrpBuckets = []bucket{{-80, 40}, {-90, 30}, {-100, 20}, {-110, 10}}
	rsrqBuckets = []bucket{{-10, 30}, {-15, 20}, {-20, 10}}
	sinrBuckets = []bucket{{20, 30}, {10, 20}, {0, 10}}
)

// Score sums independent per-metric buckets; a missing metric contributes 0.
// With every metric missing the label is Unknown rather than VeryPoor.
func Score(rsrp, rsrq, sinr *float64) (int, Label) {
	if rsrp == nil && rsrq == nil && sinr == nil {
		return 0, Unknown
	}
	score := points(rsrp, rsrpBuckets) + points(rsrq, rsrqBuckets) + points(sinr, sinrBuckets)
	return score, LabelFor(score)
}

// LabelFor maps a summed score to its label.
func LabelFor(score int) Label {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Fair
	case score >= 20:
		return Poor
	default:
		return VeryPoor
	}
}

func points(v *float64, buckets []bucket) int {
	if v == nil {
		return 0
	}
	for _, b := range buckets {
		if *v > b.above {
			return b.points
		}
	}
	return 0
}

// Bars maps RSRP to a 0-5 bar count. It returns -1 when RSRP is unknown so a
// display never draws a missing reading as zero bars.
func Bars(rsrp *float64) int {
	if rsrp == nil {
		return -1
	}
	switch v := *rsrp; {
	case v > -70:
		return 5
	case v > -80:
		return 4
	case v > -90:
		return 3
	case v > -100:
		return 2
	case v > -110:
		return 1
	default:
		return 0
	}
}
