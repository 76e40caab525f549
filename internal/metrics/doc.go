// Package metrics provides observability hooks for solution loads and build
// sessions.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never need nil checks:
//
//	orch := build.NewOrchestrator(ws, cfg, build.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics are enabled the Prometheus implementation is registered on a
// dedicated registry and exposed through HTTPHandler.
package metrics
