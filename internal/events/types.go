package events

import "time"

// Event is implemented by every notification published on the bus.
// Subscribing to Event receives all of them.
type Event interface {
	EventName() string
}

// BuildStateChanged is published by the orchestrator on every state
// transition.
type BuildStateChanged struct {
	SessionID string    `json:"session_id"`
	Target    string    `json:"target,omitempty"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

func (BuildStateChanged) EventName() string { return "build.state" }

// SolutionReloaded is published after the workspace swapped in a freshly
// parsed solution.
type SolutionReloaded struct {
	Path        string    `json:"path"`
	Projects    int       `json:"projects"`
	Diagnostics int       `json:"diagnostics"`
	At          time.Time `json:"at"`
}

func (SolutionReloaded) EventName() string { return "solution.reloaded" }
