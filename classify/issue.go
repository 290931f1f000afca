package classify

import "fmt"

// IssueKind classifies something noteworthy about one input record.
type IssueKind string

const (
	// MalformedRecord means the RAT discriminant was absent or unsupported. The
	// record is skipped.
	MalformedRecord IssueKind = "malformed_record"
	// UnknownBand means the channel number is outside every known range. The
	// cell is kept with an Unknown band.
	UnknownBand IssueKind = "unknown_band"
	// InvalidTimingAdvance means a negative timing advance was reported and
	// the distance fell back to the path-loss model (or none).
	InvalidTimingAdvance IssueKind = "invalid_timing_advance"
	// MissingMetric means no usable signal metric was reported for the RAT.
	MissingMetric IssueKind = "missing_metric"
)

// Issue ties an IssueKind to the input position it was raised for.
type Issue struct {
	Index   int       `json:"index"`
	Kind    IssueKind `json:"kind"`
	Detail  string    `json:"detail,omitempty"`
	Skipped bool      `json:"skipped"`
}

func (i Issue) String() string {
	action := "kept"
	if i.Skipped {
		action = "skipped"
	}
	if i.Detail == "" {
		return fmt.Sprintf("record %d: %s (%s)", i.Index, i.Kind, action)
	}
	return fmt.Sprintf("record %d: %s: %s (%s)", i.Index, i.Kind, i.Detail, action)
}
