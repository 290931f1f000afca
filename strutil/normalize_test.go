package strutil

import (
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	got := SplitList(" LTE, nr\tGSM,,")
	want := []string{"LTE", "nr", "GSM"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitList = %q, want %q", got, want)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("expected empty list, got %q", got)
	}
}

func TestParseInts(t *testing.T) {
	got, err := ParseInts("404, 405")
	if err != nil || !reflect.DeepEqual(got, []int{404, 405}) {
		t.Fatalf("ParseInts = %v, %v", got, err)
	}
	if _, err := ParseInts("404,x"); err == nil {
		t.Fatalf("expected error for non-integer")
	}
}

func TestNormalize(t *testing.T) {
	if NormalizeUpper(" lte ") != "LTE" || NormalizeLower(" SQLite") != "sqlite" {
		t.Fatalf("normalize mismatch")
	}
}
