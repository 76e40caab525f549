package build

// State is the orchestrator lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateStopped   State = "stopped"
)

// IsTerminal returns true once a session has finished, whatever the outcome.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateStopped
}

// IsSuccess returns true only for a clean exit.
func (s State) IsSuccess() bool {
	return s == StateCompleted
}
