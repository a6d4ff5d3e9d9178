package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/leofalp/replicator/core/parse"
	"github.com/leofalp/replicator/core/schema"
)

const resourceURL = "schema.json"

// Validator is a compiled descriptor.
type Validator struct {
	descriptor *schema.Descriptor
	compiled   *jsonschema.Schema
}

// New compiles d. It fails on malformed descriptors, never on data.
func New(d *schema.Descriptor) (*Validator, error) {
	if d == nil {
		return nil, errors.New("validate: nil schema descriptor")
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("validate: invalid descriptor: %w", err)
	}
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("validate: rendering descriptor: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceURL, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("validate: adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("validate: compiling schema: %w", err)
	}
	return &Validator{descriptor: d, compiled: compiled}, nil
}

// Descriptor returns the descriptor the validator was compiled from.
func (v *Validator) Descriptor() *schema.Descriptor {
	return v.descriptor
}

// Validate parses text and checks it against the schema, returning the
// decoded value. raw is attached to any error. A schema echo is rejected
// even if it would satisfy the schema.
func (v *Validator) Validate(text, raw string) (any, error) {
	value, err := parse.Decode(text)
	if err != nil {
		return nil, &ValidationError{Reason: ReasonNotJSON, Raw: raw, Err: err}
	}
	if parse.IsSchemaEcho(value) {
		return nil, &ValidationError{Reason: ReasonSchemaEcho, Raw: raw}
	}

	if err := v.compiled.Validate(value); err != nil {
		var schemaErr *jsonschema.ValidationError
		if errors.As(err, &schemaErr) {
			return nil, &ValidationError{Reason: ReasonMismatch, Violations: violations(schemaErr), Raw: raw, Err: err}
		}
		return nil, &ValidationError{Reason: ReasonMismatch, Raw: raw, Err: err}
	}
	return value, nil
}

// Decode validates text and unmarshals it into a new T.
func Decode[T any](v *Validator, text, raw string) (*T, error) {
	if _, err := v.Validate(text, raw); err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return nil, &ValidationError{Reason: ReasonDecode, Raw: raw, Err: err}
	}
	return out, nil
}

// violations flattens the cause tree to its leaves, sorted by path.
func violations(root *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{Path: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(root)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
