package ai

import "context"

// Provider sends one prompt to a backend and returns its text.
//
// Implementations are built once from a Config and are safe for concurrent
// use. They never retry; a failed call returns *BackendError, or
// *ConfigurationError when the credential is missing.
type Provider interface {
	Complete(ctx context.Context, request CompletionRequest) (*RawCompletion, error)

	// Kind reports the backend family.
	Kind() Kind

	// Model reports the model requests are sent to.
	Model() string
}
