package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// Reasons reported in ValidationError.Reason.
const (
	ReasonNotJSON    = "not valid JSON"
	ReasonSchemaEcho = "response echoes the schema"
	ReasonMismatch   = "does not match schema"
	ReasonDecode     = "cannot decode into target type"
)

// Violation is one schema rule broken by the instance. Path is a JSON
// pointer into the instance, "" for the root.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return path + ": " + v.Message
}

// ValidationError reports a candidate that could not become an instance.
type ValidationError struct {
	Reason     string
	Violations []Violation
	// Raw is the full completion text the candidate was taken from.
	Raw string
	// Err is the underlying parse or decode error, if any.
	Err error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed: ")
	b.WriteString(e.Reason)
	if len(e.Violations) > 0 {
		parts := make([]string, len(e.Violations))
		for i, v := range e.Violations {
			parts[i] = v.String()
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
