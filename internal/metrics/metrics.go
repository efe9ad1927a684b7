// Package metrics records scan and uninstall measurements with Prometheus
// collectors and writes them in the node-exporter textfile format.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

const namespace = "apprm"

// Recorder implements domain.MetricsRecorder.
type Recorder struct {
	registry *prometheus.Registry

	inventoryPrograms prometheus.Gauge
	scansTotal        prometheus.Counter
	outcomes          *prometheus.CounterVec
	batchDuration     prometheus.Histogram
	batchRecords      prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		inventoryPrograms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "programs",
			Help:      "Programs found by the last registry scan.",
		}),
		scansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "scans_total",
			Help:      "Completed registry scans.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uninstall",
			Name:      "outcomes_total",
			Help:      "Per-record uninstall outcomes by kind.",
		}, []string{"kind"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "uninstall",
			Name:      "batch_duration_seconds",
			Help:      "Wall time from batch start to completion signal.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		batchRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "uninstall",
			Name:      "batch_records",
			Help:      "Records in the last completed batch.",
		}),
	}
	// Registering fresh collectors on a fresh registry cannot collide.
	_ = r.Register(r.registry)
	return r
}

// Register adds the collectors to reg. Already-registered collectors are kept.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	cs := []prometheus.Collector{r.inventoryPrograms, r.scansTotal, r.outcomes, r.batchDuration, r.batchRecords}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func (r *Recorder) ObserveScan(records int) {
	r.scansTotal.Inc()
	r.inventoryPrograms.Set(float64(records))
}

func (r *Recorder) ObserveOutcome(kind domain.OutcomeKind) {
	r.outcomes.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) ObserveBatch(summary domain.BatchSummary) {
	r.batchRecords.Set(float64(summary.Total))
	if !summary.FinishedAt.IsZero() && !summary.StartedAt.IsZero() {
		r.batchDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}
}

// WriteTextfile atomically writes the current values to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveScan(int)                   {}
func (Nop) ObserveOutcome(domain.OutcomeKind) {}
func (Nop) ObserveBatch(domain.BatchSummary)  {}

var (
	_ domain.MetricsRecorder = (*Recorder)(nil)
	_ domain.MetricsRecorder = Nop{}
)
