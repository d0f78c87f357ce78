// Package metrics provides Prometheus observability for the batch jobs and
// the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Job runs by job name and result ("ok" or "error")
	JobRuns *prometheus.CounterVec

	// Job run duration by job name
	JobDuration *prometheus.HistogramVec

	// Matches created by the match generation job
	MatchesCreated prometheus.Counter

	// Circles formed by the rotation job
	CirclesFormed prometheus.Counter

	// Circles dissolved by the rotation job
	CirclesDissolved prometheus.Counter

	// Trust score changes by kind ("decay" or "boost")
	TrustAdjustments *prometheus.CounterVec
}

// New creates a Metrics instance with every collector registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		JobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mfn_job_runs_total",
			Help: "Total batch job runs by job and result",
		}, []string{"job", "result"}),

		JobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mfn_job_duration_seconds",
			Help:    "Duration of batch job runs",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),

		MatchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mfn_matches_created_total",
			Help: "Total matches created by the match generation job",
		}),

		CirclesFormed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mfn_circles_formed_total",
			Help: "Total circles formed",
		}),

		CirclesDissolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mfn_circles_dissolved_total",
			Help: "Total circles dissolved",
		}),

		TrustAdjustments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mfn_trust_adjustments_total",
			Help: "Total trust score adjustments by kind",
		}, []string{"kind"}),
	}
}

// ObserveJobRun records one completed job run and its duration.
func (m *Metrics) ObserveJobRun(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobRuns.WithLabelValues(job, result).Inc()
	m.JobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// AddMatchesCreated records matches created in a run.
func (m *Metrics) AddMatchesCreated(n int) {
	if m != nil && n > 0 {
		m.MatchesCreated.Add(float64(n))
	}
}

// AddCirclesFormed records circles formed in a run.
func (m *Metrics) AddCirclesFormed(n int) {
	if m != nil && n > 0 {
		m.CirclesFormed.Add(float64(n))
	}
}

// AddCirclesDissolved records circles dissolved in a run.
func (m *Metrics) AddCirclesDissolved(n int) {
	if m != nil && n > 0 {
		m.CirclesDissolved.Add(float64(n))
	}
}

// IncrementTrustAdjustment records one trust score change of the given kind.
func (m *Metrics) IncrementTrustAdjustment(kind string) {
	if m != nil {
		m.TrustAdjustments.WithLabelValues(kind).Inc()
	}
}
