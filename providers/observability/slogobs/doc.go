// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans and metrics are rendered as debug-level log records; counters keep a
// running total that can be read back with [Observer.CounterValue]. Output
// goes to stderr by default so that commands printing machine-readable data
// on stdout stay clean. Use [WithFormat], [WithLevel], [WithOutput],
// [WithColors] or [WithLogger] to override the REPLICATOR_LOG_FORMAT and
// REPLICATOR_LOG_LEVEL environment defaults.
package slogobs
