// Package workspace ties a solution file to the build orchestrator.
//
// A Workspace is created once at startup and handed to every front end
// (CLI commands, control server, watcher, scheduler). It holds the current
// solution behind an atomic pointer so readers never block on a reload.
package workspace
