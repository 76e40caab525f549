// Package build runs the external build tool against the loaded solution.
//
// The Orchestrator owns at most one tool process at a time. Starting a new
// session stops the previous one; the argument vector (target, selected
// configuration and platform) is captured when the session starts. Both
// output streams are drained concurrently into buildevent reassemblers so the
// tool can never block on a full pipe, and decoded events are queued until a
// consumer polls them.
//
// State moves Idle -> Running -> Completed | Failed | Stopped, and back to
// Idle on Acknowledge. Spawn failures surface as CategorySpawn errors; a
// nonzero exit is recorded as a CategoryProcess error carrying the exit code.
package build
