package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

func TestNew_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun("receivables", ResultCompleted, 50*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "reconcile_runs_total")
	assert.Contains(t, names, "reconcile_run_duration_seconds")
}

func TestObserveRun(t *testing.T) {
	m := New(nil)

	m.ObserveRun("receivables", ResultCompleted, time.Second)
	m.ObserveRun("receivables", ResultCompleted, time.Second)
	m.ObserveRun("payables", ResultInvalid, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("receivables", ResultCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("payables", ResultInvalid)))
}

func TestObserveOutcome(t *testing.T) {
	m := New(nil)

	m.ObserveOutcome("receivables", status.Summary{FullySettled: 2, Unsettled: 1}, 3, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClaimsTotal.WithLabelValues("receivables", "fully_settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClaimsTotal.WithLabelValues("receivables", "unsettled")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MatchesTotal.WithLabelValues("receivables")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SettlementsUsed.WithLabelValues("receivables", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SettlementsUsed.WithLabelValues("receivables", "false")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRun("receivables", ResultFailed, time.Second)
		m.ObserveOutcome("receivables", status.Summary{}, 0, 0)
		m.ObserveExport("pdf")
	})
}
