package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
// Tracks submission volume, reconstruction latency, and verifier findings.
type Metrics struct {
	Submissions            *prometheus.CounterVec
	ReconstructionDuration prometheus.Histogram
	UnresolvedFailures     prometheus.Gauge
	VerifyDivergence       prometheus.Counter
}

// New creates a new Metrics instance with all ledger module metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opscheck_submissions_total",
			Help: "Total checklist submissions accepted by the ledger writer",
		}, []string{"status", "environment"}),
		ReconstructionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "opscheck_reconstruction_duration_seconds",
			Help:    "Duration of unresolved-failure reconstruction runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		UnresolvedFailures: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "opscheck_unresolved_failures",
			Help: "Unresolved failing keys observed by the most recent reconstruction",
		}),
		VerifyDivergence: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opscheck_verify_divergence_total",
			Help: "Consistency checks that found the record diverging from the log",
		}),
	}
}

// IncrementSubmission records one accepted submission.
func (m *Metrics) IncrementSubmission(status, environment string) {
	m.Submissions.WithLabelValues(status, environment).Inc()
}

// ObserveReconstruction records the duration of a reconstruction run.
// Call with time.Now() at the start of the run.
func (m *Metrics) ObserveReconstruction(start time.Time, unresolved int) {
	m.ReconstructionDuration.Observe(time.Since(start).Seconds())
	m.UnresolvedFailures.Set(float64(unresolved))
}

// IncrementDivergence records one inconsistent verify finding.
func (m *Metrics) IncrementDivergence() {
	m.VerifyDivergence.Inc()
}
