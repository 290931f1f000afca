package quality

import (
	"testing"

	"cellintel/cell"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name             string
		rsrp, rsrq, sinr *float64
		score            int
		label            Label
	}{
		{"excellent", cell.Float(-75), cell.Float(-8), cell.Float(25), 100, Excellent},
		{"very poor", cell.Float(-105), cell.Float(-22), cell.Float(-5), 10, VeryPoor},
		{"bucket edges are exclusive", cell.Float(-80), cell.Float(-10), cell.Float(20), 70, Good},
		{"rsrp only", cell.Float(-85), nil, nil, 30, Poor},
		{"fair", cell.Float(-95), cell.Float(-12), cell.Float(5), 50, Fair},
		{"zero sinr", nil, nil, cell.Float(0), 0, VeryPoor},
		{"nothing measured", nil, nil, nil, 0, Unknown},
	}
	for _, tc := range cases {
		score, label := Score(tc.rsrp, tc.rsrq, tc.sinr)
		if score != tc.score || label != tc.label {
			t.Errorf("%s: got (%d,%s), want (%d,%s)", tc.name, score, label, tc.score, tc.label)
		}
	}
}

func TestLabelThresholds(t *testing.T) {
	cases := map[int]Label{100: Excellent, 80: Excellent, 79: Good, 60: Good, 40: Fair, 39: Poor, 20: Poor, 19: VeryPoor, 0: VeryPoor}
	for score, want := range cases {
		if got := LabelFor(score); got != want {
			t.Errorf("LabelFor(%d)=%s, want %s", score, got, want)
		}
	}
}

func TestBars(t *testing.T) {
	if Bars(nil) != -1 {
		t.Fatalf("unknown RSRP should return -1")
	}
	cases := map[float64]int{-60: 5, -70: 4, -85: 3, -95: 2, -105: 1, -110: 0, -130: 0}
	for rsrp, want := range cases {
		if got := Bars(cell.Float(rsrp)); got != want {
			t.Errorf("Bars(%v)=%d, want %d", rsrp, got, want)
		}
	}
}
