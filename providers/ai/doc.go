// Package ai defines the contract between the generation engine and the
// text-generation backends.
//
// A [Config] names the backend [Kind] and carries its credential, optional
// base URL, model and JSON-mode preference. Each backend package
// (gemini, openai, anthropic) turns a [CompletionRequest] into a
// [RawCompletion] and wraps transport failures in [*BackendError].
// A missing credential is reported as [*ConfigurationError] before any
// network access.
package ai
