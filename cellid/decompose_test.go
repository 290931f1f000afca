package cellid

import (
	"testing"

	"cellintel/cell"
)

func TestDecompose(t *testing.T) {
	cases := []struct {
		rat          cell.RAT
		id           int64
		site, sector int64
	}{
		{cell.LTE, 1234, 4, 210},
		{cell.LTE, 12345, 48, 57},
		{cell.LTE, 0, 0, 0},
		{cell.NR, 8192 + 5, 2, 5},
		{cell.NR, 68719476735, 16777215, 4095},
		{cell.WCDMA, 65536*7 + 300, 7, 300},
	}
	for _, tc := range cases {
		site, sector := Decompose(tc.rat, cell.Int64(tc.id))
		if site == nil || sector == nil {
			t.Fatalf("Decompose(%s,%d) returned nil", tc.rat, tc.id)
		}
		if *site != tc.site || *sector != tc.sector {
			t.Errorf("Decompose(%s,%d)=(%d,%d), want (%d,%d)", tc.rat, tc.id, *site, *sector, tc.site, tc.sector)
		}
	}
}

func TestDecomposeAbsent(t *testing.T) {
	cases := []struct {
		name string
		rat  cell.RAT
		id   *int64
	}{
		{"nil id", cell.LTE, nil},
		{"negative id", cell.LTE, cell.Int64(-1)},
		{"gsm", cell.GSM, cell.Int64(4242)},
		{"unknown rat", cell.Unknown, cell.Int64(4242)},
	}
	for _, tc := range cases {
		site, sector := Decompose(tc.rat, tc.id)
		if site != nil || sector != nil {
			t.Errorf("%s: expected (nil,nil), got (%v,%v)", tc.name, site, sector)
		}
	}
}
