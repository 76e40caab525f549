// Package forward moves build events out of the orchestrator.
//
// A Pump is the only consumer of the orchestrator queue in serve mode; it
// hands each drained batch to its sinks: the in-memory Backlog served over
// HTTP and, when configured, a NATSForwarder that republishes events and
// state changes for other processes.
package forward
