package build

import (
	"context"
	"os/exec"
	"time"

	"git.home.luguber.info/inful/solvent/internal/build/queue"
	"git.home.luguber.info/inful/solvent/internal/buildevent"
)

// Session is the live state of one build invocation. Fields after the
// request are guarded by the orchestrator mutex.
type Session struct {
	ID      string
	Request Request
	Args    []string

	events *queue.EventQueue[buildevent.Event]
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}

	state         State
	stopRequested bool
	startedAt     time.Time
	endedAt       time.Time
	exitCode      int
	err           error
}

func newSession(id string, req Request, args []string) *Session {
	return &Session{
		ID:      id,
		Request: req,
		Args:    args,
		events:  queue.NewEventQueue[buildevent.Event](),
		done:    make(chan struct{}),
		state:   StateIdle,
	}
}

// Status is a point-in-time view of the orchestrator.
type Status struct {
	State         State     `json:"state"`
	SessionID     string    `json:"session_id,omitempty"`
	Target        string    `json:"target,omitempty"`
	Configuration string    `json:"configuration,omitempty"`
	Platform      string    `json:"platform,omitempty"`
	Args          []string  `json:"args,omitempty"`
	StartedAt     time.Time `json:"started_at,omitzero"`
	EndedAt       time.Time `json:"ended_at,omitzero"`
	ExitCode      int       `json:"exit_code"`
	Error         string    `json:"error,omitempty"`
	Pending       int       `json:"pending"`
	Emitted       uint64    `json:"emitted"`

	err error
}

// Err returns the classified error of a failed session.
func (s Status) Err() error { return s.err }
