package metrics

import "time"

// OutcomeLabel enumerates terminal build outcomes for counters.
type OutcomeLabel string

const (
	OutcomeCompleted OutcomeLabel = "completed"
	OutcomeFailed    OutcomeLabel = "failed"
	OutcomeStopped   OutcomeLabel = "stopped"
)

// Recorder defines observability hooks for solution loads and build sessions.
// Implementations may forward to Prometheus or elsewhere. All methods must be
// safe to call from stream workers concurrently.
type Recorder interface {
	ObserveSolutionLoad(d time.Duration, projects int, diagnostics int)
	ObserveBuildDuration(target string, d time.Duration)
	IncBuildOutcome(outcome OutcomeLabel)
	IncSpawnFailure()
	SetBuildRunning(running bool)
	IncEvent(eventType string, stream string)
	IncDecodeFallback(stream string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSolutionLoad(time.Duration, int, int)  {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration)   {}
func (NoopRecorder) IncBuildOutcome(OutcomeLabel)                 {}
func (NoopRecorder) IncSpawnFailure()                             {}
func (NoopRecorder) SetBuildRunning(bool)                         {}
func (NoopRecorder) IncEvent(string, string)                      {}
func (NoopRecorder) IncDecodeFallback(string)                     {}
