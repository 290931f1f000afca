package distance

import (
	"math"
	"testing"

	"cellintel/cell"
)

func TestTimingAdvanceExact(t *testing.T) {
	got, ok := Estimate(cell.LTE, cell.Int(128), nil, cell.Int(1800))
	if !ok {
		t.Fatalf("expected an estimate")
	}
	if math.Abs(got-9999.36) > 1e-6 {
		t.Fatalf("LTE TA 128 -> %v, want 9999.36", got)
	}

	got, ok = Estimate(cell.GSM, cell.Int(3), nil, nil)
	if !ok || got != 1650 {
		t.Fatalf("GSM TA 3 -> %v,%v, want 1650", got, ok)
	}

	res, ok := EstimateDetailed(cell.LTE, cell.Int(0), cell.Float(-95), nil)
	if !ok || res.Meters != 0 || res.Method != cell.DistanceTimingAdvance {
		t.Fatalf("TA 0 should be a valid zero-distance TA estimate, got %+v,%v", res, ok)
	}
}

func TestNegativeTAFallsBackToPathLoss(t *testing.T) {
	res, ok := EstimateDetailed(cell.LTE, cell.Int(-1), cell.Float(-95), cell.Int(1800))
	if !ok {
		t.Fatalf("expected path-loss fallback")
	}
	if res.Method != cell.DistancePathLoss || !res.Approximate() {
		t.Fatalf("expected path_loss method, got %q", res.Method)
	}
	if math.IsInf(res.Meters, 0) || math.IsNaN(res.Meters) || res.Meters <= 0 {
		t.Fatalf("expected positive finite distance, got %v", res.Meters)
	}
	if res.Meters == -1*LTEMetersPerTA {
		t.Fatalf("fallback must not use the TA value")
	}
	// 43 - (-95) = 138 dB; 138 - 20*log10(1800) - 32.44 = 40.4547...; 10^(x/20) km.
	want := math.Pow(10, (138-20*math.Log10(1800)-32.44)/20) * 1000
	if math.Abs(res.Meters-want) > 1e-6 {
		t.Fatalf("path loss -> %v, want %v", res.Meters, want)
	}
}

func TestPathLossDefaultsFrequency(t *testing.T) {
	withDefault, ok := PathLoss(cell.Float(-100), nil)
	if !ok {
		t.Fatalf("expected estimate")
	}
	explicit, _ := PathLoss(cell.Float(-100), cell.Int(1800))
	if withDefault != explicit {
		t.Fatalf("nil frequency should default to 1800 MHz: %v vs %v", withDefault, explicit)
	}
	zero, _ := PathLoss(cell.Float(-100), cell.Int(0))
	if zero != explicit {
		t.Fatalf("zero frequency should default to 1800 MHz")
	}
	higher, _ := PathLoss(cell.Float(-100), cell.Int(3500))
	if higher >= explicit {
		t.Fatalf("higher frequency should give a shorter distance: %v >= %v", higher, explicit)
	}
}

func TestNoEstimate(t *testing.T) {
	cases := []struct {
		name string
		rat  cell.RAT
		ta   *int
		rsrp *float64
	}{
		{"nothing", cell.LTE, nil, nil},
		{"too strong", cell.LTE, nil, cell.Float(-39)},
		{"negative ta no rsrp", cell.LTE, cell.Int(-5), nil},
		{"nr ta ignored", cell.NR, cell.Int(10), nil},
	}
	for _, tc := range cases {
		if got, ok := Estimate(tc.rat, tc.ta, tc.rsrp, nil); ok {
			t.Errorf("%s: expected no estimate, got %v", tc.name, got)
		}
	}
	if _, ok := PathLoss(cell.Float(-40), nil); !ok {
		t.Fatalf("-40 dBm sits on the threshold and must be accepted")
	}
}

func TestHaversineAndBearing(t *testing.T) {
	delhi := Point{Lat: 28.6139, Lon: 77.2090}
	mumbai := Point{Lat: 19.0760, Lon: 72.8777}
	d := Haversine(delhi, mumbai)
	if d < 1140000 || d > 1160000 {
		t.Fatalf("Delhi-Mumbai distance %v m out of range", d)
	}
	if Haversine(delhi, delhi) != 0 {
		t.Fatalf("distance to self should be zero")
	}
	north := Bearing(Point{Lat: 0, Lon: 0}, Point{Lat: 1, Lon: 0})
	if math.Abs(north) > 1e-9 {
		t.Fatalf("bearing due north = %v", north)
	}
	east := Bearing(Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 1})
	if math.Abs(east-90) > 1e-9 {
		t.Fatalf("bearing due east = %v", east)
	}
	b := Bearing(Point{Lat: 0, Lon: 0}, Point{Lat: -1, Lon: -1})
	if CompassPoint(b) != "SW" {
		t.Fatalf("bearing %v should point SW, got %s", b, CompassPoint(b))
	}
}

func TestCompassPoint(t *testing.T) {
	cases := map[float64]string{0: "N", 22.4: "N", 22.5: "NE", 90: "E", 180: "S", 270: "W", 337.5: "N", 359: "N", -45: "NW", 720: "N"}
	for deg, want := range cases {
		if got := CompassPoint(deg); got != want {
			t.Errorf("CompassPoint(%v)=%s, want %s", deg, got, want)
		}
	}
}
