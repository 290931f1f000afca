package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellintel/ca"
	"cellintel/classify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsFollowTracker(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	tr := NewTracker()
	tr.SetMetrics(m)
	tr.RecordScan(3, sampleScan())
	tr.RecordScan(0, classify.Scan{})

	if got := testutil.ToFloat64(m.Scans); got != 2 {
		t.Fatalf("scans = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Records); got != 3 {
		t.Fatalf("records = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Cells.WithLabelValues("NR", "n78")); got != 1 {
		t.Fatalf("NR/n78 cells = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Issues.WithLabelValues(string(classify.MalformedRecord))); got != 1 {
		t.Fatalf("malformed issues = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CASessions.WithLabelValues(ca.Class2CC, "")); got != 1 {
		t.Fatalf("2CC sessions = %v, want 1", got)
	}
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("second NewMetrics: %v", err)
	}
	second.Scans.Inc()
	if got := testutil.ToFloat64(first.Scans); got != 1 {
		t.Fatalf("expected shared counter, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.Observe(3, sampleScan())
	path := filepath.Join(t.TempDir(), "cellintel.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `cellintel_cells_total{band="B3",rat="LTE"} 1`) {
		t.Fatalf("textfile missing cell counter:\n%s", data)
	}

	var nilMetrics *Metrics
	nilMetrics.Observe(1, sampleScan())
	if err := nilMetrics.WriteTextfile(path); err == nil {
		t.Fatalf("expected error from nil metrics")
	}
}
