package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveSolutionLoad(20*time.Millisecond, 3, 1)
	pr.ObserveBuildDuration("build", 2*time.Second)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncSpawnFailure()
	pr.SetBuildRunning(true)
	pr.IncEvent("BuildError", "stdout")
	pr.IncDecodeFallback("stderr")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.InDelta(t, 2, gaugeOrCounter(t, pr.buildOutcome.WithLabelValues("failed")), 0.001)
	assert.InDelta(t, 1, gaugeOrCounter(t, pr.buildRunning), 0.001)
	assert.InDelta(t, 3, gaugeOrCounter(t, pr.solutionProjects), 0.001)
	assert.InDelta(t, 1, gaugeOrCounter(t, pr.events.WithLabelValues("BuildError", "stdout")), 0.001)

	pr.SetBuildRunning(false)
	assert.InDelta(t, 0, gaugeOrCounter(t, pr.buildRunning), 0.001)
}

func gaugeOrCounter(t *testing.T, m prom.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncBuildOutcome(OutcomeCompleted)
		pr.SetBuildRunning(true)
		pr.IncEvent("BuildStarted", "stdout")
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(OutcomeCompleted)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `solvent_build_outcomes_total{outcome="completed"} 1`)
}
