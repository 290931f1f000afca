package stats

import (
	"errors"
	"fmt"
	"strings"

	"cellintel/classify"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors the tracker counters as Prometheus collectors so a run can
// be exported as a node_exporter textfile.
type Metrics struct {
	gatherer prometheus.Gatherer

	Scans      prometheus.Counter
	Records    prometheus.Counter
	Cells      *prometheus.CounterVec // rat, band
	Issues     *prometheus.CounterVec // kind
	CASessions *prometheus.CounterVec // class, mode
}

// NewMetrics registers the collectors against reg, or the default registry
// when reg is nil. Registering twice against one registry reuses the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	scans, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellintel_scans_total",
		Help: "Scans processed.",
	}), "cellintel_scans_total")
	if err != nil {
		return nil, err
	}
	records, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellintel_records_total",
		Help: "Raw cell records read from scans.",
	}), "cellintel_records_total")
	if err != nil {
		return nil, err
	}
	cells, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellintel_cells_total",
		Help: "Classified cells, labeled by radio access technology and band.",
	}, []string{"rat", "band"}), "cellintel_cells_total")
	if err != nil {
		return nil, err
	}
	issues, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellintel_issues_total",
		Help: "Classification issues, labeled by kind.",
	}, []string{"kind"}), "cellintel_issues_total")
	if err != nil {
		return nil, err
	}
	sessions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellintel_ca_sessions_total",
		Help: "Active carrier aggregation sessions, labeled by carrier class and mode.",
	}, []string{"class", "mode"}), "cellintel_ca_sessions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:   gatherer,
		Scans:      scans,
		Records:    records,
		Cells:      cells,
		Issues:     issues,
		CASessions: sessions,
	}, nil
}

// Observe folds one scan into the collectors. Safe on a nil receiver.
func (m *Metrics) Observe(records int, scan classify.Scan) {
	if m == nil {
		return
	}
	m.Scans.Inc()
	m.Records.Add(float64(records))
	for _, c := range scan.Cells {
		m.Cells.WithLabelValues(c.RAT.String(), c.Band.ID).Inc()
	}
	for _, issue := range scan.Issues {
		m.Issues.WithLabelValues(string(issue.Kind)).Inc()
	}
	if scan.Session.Active {
		m.CASessions.WithLabelValues(scan.Session.Class(), string(scan.Session.Mode)).Inc()
	}
}

// WriteTextfile atomically writes the current values in the text exposition
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return errors.New("stats: metrics not initialized")
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("stats: metrics textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("stats: write metrics textfile: %w", err)
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("stats: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("stats: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
