// Package client recovers schema-conforming JSON instances from text
// generation backends.
//
// A [Client] is built once from an [ai.Config] with [New]. Each call to
// [Client.Generate] composes a schema-constrained prompt, sends it through the
// middleware chain to the backend, sanitizes the reply, extracts a JSON
// candidate and validates it. The call either returns exactly one [Instance]
// or fails with *ai.ConfigurationError, *ai.BackendError or
// *validate.ValidationError. Nothing is retried.
//
// For typed results use [NewStructured] or [FromBaseClient], which compile the
// descriptor once and decode every instance into T.
package client
