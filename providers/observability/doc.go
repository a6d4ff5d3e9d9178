// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging across replicator.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single
// injectable dependency. An active [Provider] and [Span] travel through a
// [context.Context] via [ContextWithObserver] and [ContextWithSpan], so that
// backend adapters deep in a call can enrich the span opened by the client.
//
// semconv.go holds the attribute keys, span names, events and metric names
// recorded by the generation engine and the app pipeline.
package observability
