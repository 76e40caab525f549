// Package solution loads a native solution file into an immutable project
// model: project definitions, the configuration matrix, the nesting forest and
// one file tree per project recovered from its filter or project manifest.
//
// Loading is tolerant. Only an unreadable solution file or a missing format
// version aborts a load; every other problem is recorded as a diagnostic on the
// returned Solution and logged through slog.
package solution
