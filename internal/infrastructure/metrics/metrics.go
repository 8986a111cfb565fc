// Package metrics exposes Prometheus instruments for reconciliation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

const metricPrefix = "reconcile_"

// Run outcomes used as the "result" label.
const (
	ResultCompleted = "completed"
	ResultInvalid   = "invalid"
	ResultFailed    = "failed"
)

// Metrics bundles reconciliation metrics.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	ClaimsTotal     *prometheus.CounterVec
	MatchesTotal    *prometheus.CounterVec
	SettlementsUsed *prometheus.CounterVec
	ExportsTotal    *prometheus.CounterVec
}

// New constructs metrics and registers them with reg. A nil reg skips
// registration, which keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total reconciliation runs by mode and result",
			},
			[]string{"mode", "result"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "run_duration_seconds",
				Help:    "Reconciliation run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		ClaimsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claims_total",
				Help: "Claims classified, by mode and status",
			},
			[]string{"mode", "status"},
		),
		MatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "matches_total",
				Help: "Match records emitted, by mode",
			},
			[]string{"mode"},
		),
		SettlementsUsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlements_total",
				Help: "Settlements seen, by mode and whether a claim consumed them",
			},
			[]string{"mode", "consumed"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Report exports by format",
			},
			[]string{"format"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.RunsTotal,
			m.RunDuration,
			m.ClaimsTotal,
			m.MatchesTotal,
			m.SettlementsUsed,
			m.ExportsTotal,
		)
	}
	return m
}

// ObserveRun records a finished run. Nil receivers are no-ops.
func (m *Metrics) ObserveRun(mode, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(mode, result).Inc()
	m.RunDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveOutcome records the claims, matches and settlement usage of a
// completed run.
func (m *Metrics) ObserveOutcome(mode string, summary status.Summary, matches, settlements int) {
	if m == nil {
		return
	}
	for _, st := range status.All {
		if n := summary.Count(st); n > 0 {
			m.ClaimsTotal.WithLabelValues(mode, string(st)).Add(float64(n))
		}
	}
	m.MatchesTotal.WithLabelValues(mode).Add(float64(matches))
	m.SettlementsUsed.WithLabelValues(mode, "true").Add(float64(matches))
	if unused := settlements - matches; unused > 0 {
		m.SettlementsUsed.WithLabelValues(mode, "false").Add(float64(unused))
	}
}

// ObserveExport records a report export.
func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format).Inc()
}
