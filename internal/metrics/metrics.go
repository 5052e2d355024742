package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shorts"

// Recorder owns the registry and the collectors written to it.
type Recorder struct {
	registry      *prometheus.Registry
	accepted      prometheus.Counter
	finished      *prometheus.CounterVec
	inFlight      prometheus.Gauge
	stageDuration *prometheus.HistogramVec
	previews      *prometheus.CounterVec
	textfile      string
}

// New creates a Recorder. textfile may be empty to skip file export.
func New(textfile string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_accepted_total",
			Help:      "Generation jobs accepted for processing.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Generation jobs that reached a terminal status.",
		}, []string{"status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Generation jobs currently running.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		previews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_total",
			Help:      "Preview frame requests by result.",
		}, []string{"result"}),
		textfile: textfile,
	}
	r.registry.MustRegister(r.accepted, r.finished, r.inFlight, r.stageDuration, r.previews)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// JobAccepted counts a new job and marks it in flight.
func (r *Recorder) JobAccepted() {
	if r == nil {
		return
	}
	r.accepted.Inc()
	r.inFlight.Inc()
}

// JobFinished records a terminal status for an in-flight job.
func (r *Recorder) JobFinished(status string) {
	if r == nil {
		return
	}
	r.finished.WithLabelValues(status).Inc()
	r.inFlight.Dec()
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// PreviewServed counts a preview request by outcome.
func (r *Recorder) PreviewServed(ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.previews.WithLabelValues(result).Inc()
}

// Flush writes the current metrics to the configured textfile.
func (r *Recorder) Flush() error {
	if r == nil || r.textfile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.textfile), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(r.textfile, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
