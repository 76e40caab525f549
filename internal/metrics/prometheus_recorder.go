package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "solvent"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	solutionLoad     prom.Histogram
	solutionProjects prom.Gauge
	solutionDiags    prom.Gauge
	buildDuration    *prom.HistogramVec
	buildOutcome     *prom.CounterVec
	spawnFailures    prom.Counter
	buildRunning     prom.Gauge
	events           *prom.CounterVec
	decodeFallbacks  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		solutionLoad: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "solution_load_duration_seconds",
			Help:      "Duration of solution loads including project manifests",
			Buckets:   prom.DefBuckets,
		}),
		solutionProjects: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "solution_projects",
			Help:      "Projects in the currently loaded solution",
		}),
		solutionDiags: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "solution_diagnostics",
			Help:      "Diagnostics reported by the last solution load",
		}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Build session duration by target",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"target"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final state",
		}, []string{"outcome"}),
		spawnFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_spawn_failures_total",
			Help:      "Build tool processes that could not be started",
		}),
		buildRunning: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "build_running",
			Help:      "1 while a build session is running",
		}),
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_events_total",
			Help:      "Build events emitted by type and output stream",
		}, []string{"type", "stream"}),
		decodeFallbacks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_event_decode_fallbacks_total",
			Help:      "Structured frames that degraded to raw messages",
		}, []string{"stream"}),
	}
	reg.MustRegister(pr.solutionLoad, pr.solutionProjects, pr.solutionDiags, pr.buildDuration,
		pr.buildOutcome, pr.spawnFailures, pr.buildRunning, pr.events, pr.decodeFallbacks)
	return pr
}

func (p *PrometheusRecorder) ObserveSolutionLoad(d time.Duration, projects, diagnostics int) {
	if p == nil {
		return
	}
	p.solutionLoad.Observe(d.Seconds())
	p.solutionProjects.Set(float64(projects))
	p.solutionDiags.Set(float64(diagnostics))
}

func (p *PrometheusRecorder) ObserveBuildDuration(target string, d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncSpawnFailure() {
	if p == nil {
		return
	}
	p.spawnFailures.Inc()
}

func (p *PrometheusRecorder) SetBuildRunning(running bool) {
	if p == nil {
		return
	}
	if running {
		p.buildRunning.Set(1)
		return
	}
	p.buildRunning.Set(0)
}

func (p *PrometheusRecorder) IncEvent(eventType, stream string) {
	if p == nil {
		return
	}
	p.events.WithLabelValues(eventType, stream).Inc()
}

func (p *PrometheusRecorder) IncDecodeFallback(stream string) {
	if p == nil {
		return
	}
	p.decodeFallbacks.WithLabelValues(stream).Inc()
}
