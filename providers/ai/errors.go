package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrBackend matches every *BackendError.
	ErrBackend = errors.New("backend error")
)

// ConfigurationError reports a backend that cannot be called as configured,
// typically because its credential is empty.
type ConfigurationError struct {
	Kind    Kind
	Message string
}

// MissingKey builds the error returned when kind has no credential.
func MissingKey(kind Kind) *ConfigurationError {
	msg := "API key is not set"
	if env := kind.EnvKey(); env != "" {
		msg = env + " is not set"
	}
	return &ConfigurationError{Kind: kind, Message: msg}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s provider: %s", e.Kind, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// BackendError wraps a transport, authentication or API failure. The original
// error is kept intact for errors.As.
type BackendError struct {
	Kind       Kind
	Model      string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend (model %s, status %d): %v", e.Kind, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend (model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
