// Package errors provides classified error primitives shared by the solution
// loader, the event decoder and the build orchestrator.
//
// Key features:
//   - ErrorCategory: broad classification (io, format, project, decode, spawn, process...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: retry behavior
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryIO, "cannot read solution").
//		WithContext("path", path).
//		Build()
package errors
