package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
)

const namespace = "fieldcheck"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder keeps sync metrics in a private registry. A CLI process has no
// scrape endpoint, so WriteTextfile exports them for node_exporter's
// textfile collector.
type Recorder struct {
	registry *prometheus.Registry

	pushRecords  *prometheus.CounterVec
	pullSteps    *prometheus.CounterVec
	pullRows     *prometheus.GaugeVec
	syncDuration *prometheus.HistogramVec
}

var _ ports.SyncMetrics = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pushRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_records_total",
			Help:      "Records sent to the server, by kind and result.",
		}, []string{"kind", "result"}),
		pullSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pull_steps_total",
			Help:      "Reference data pull steps, by dataset and result.",
		}, []string{"dataset", "result"}),
		pullRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pull_rows",
			Help:      "Rows stored by the last pull of each dataset.",
		}, []string{"dataset"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of push and pull runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"flow"}),
	}
	r.registry.MustRegister(r.pushRecords, r.pullSteps, r.pullRows, r.syncDuration)
	return r
}

func (r *Recorder) PushRecord(kind string, result string) {
	r.pushRecords.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) PullStep(dataset string, result string, rows int) {
	r.pullSteps.WithLabelValues(dataset, result).Inc()
	if result == ResultSuccess {
		r.pullRows.WithLabelValues(dataset).Set(float64(rows))
	}
}

func (r *Recorder) ObserveDuration(flow string, elapsed time.Duration) {
	r.syncDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry atomically; an empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errs.Wrapf(err, "write metrics textfile %q", path)
	}
	return nil
}
