package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveSolutionLoad(time.Millisecond, 1, 0)
	r.ObserveBuildDuration("build", time.Second)
	r.IncBuildOutcome(OutcomeStopped)
	r.IncSpawnFailure()
	r.SetBuildRunning(false)
	r.IncEvent("RawMessage", "stderr")
	r.IncDecodeFallback("stdout")
}
