package handlers

import (
	"git.home.luguber.info/inful/solvent/internal/build"
	"git.home.luguber.info/inful/solvent/internal/buildevent"
	"git.home.luguber.info/inful/solvent/internal/solution"
)

// Orchestrator is the build control used by the handlers.
type Orchestrator interface {
	Execute(target string) error
	Stop()
	Acknowledge() bool
	Status() build.Status
}

// Workspace gives access to the loaded solution.
type Workspace interface {
	Current() *solution.Solution
	Reload() (*solution.Solution, error)
	Select(axis solution.Axis, value string) error
}

// EventBuffer holds drained events for HTTP clients.
type EventBuffer interface {
	Drain() []buildevent.Event
	Dropped() uint64
}
