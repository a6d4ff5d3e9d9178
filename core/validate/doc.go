// Package validate checks a JSON candidate against a schema.Descriptor.
//
// Descriptors are compiled once with santhosh-tekuri/jsonschema (draft
// 2020-12) and the compiled Validator is safe for concurrent use. Every
// failure is a *ValidationError carrying the raw completion text it came
// from, so callers can log what the model actually said.
package validate
