// Package trace provides structured sync-event tracing for the bridge.
//
// This package defines the Logger interface and Event type for capturing
// every propagation the bridge performs: slot writes, derived updates,
// trigger fires, deferred flushes, echo suppressions, deep
// resubscriptions, diagnostics, and teardown. It is separate from
// operational logging (slog) - the trace is a complete machine-readable
// record of what moved between the two reactive systems and why.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	opts.Trace = trace.NewSlogAdapter(slog.Default())
//
//	// For offline analysis: write to binary file
//	opts.Trace, _ = trace.NewFileLogger("bridge.dtrace")
//
//	// Both: use MultiLogger
//	opts.Trace = trace.NewMultiLogger(
//	    trace.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Trace files use CBOR encoding with .dtrace extension. The duplex-trace
// CLI tool provides viewing and filtering.
package trace
