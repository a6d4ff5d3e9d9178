package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/leofalp/replicator/core/schema"
	"github.com/leofalp/replicator/core/validate"
	"github.com/leofalp/replicator/providers/ai"
)

// StructuredClient generates instances of one descriptor and decodes them
// into T. The descriptor is compiled once at construction.
//
//	type Review struct {
//	    Product string `json:"product"`
//	    Rating  int    `json:"rating"`
//	}
//
//	d := schema.Object(
//	    schema.Required("product", schema.String()),
//	    schema.Required("rating", schema.Integer()),
//	)
//	reviews, err := client.NewStructured[Review](cfg, d)
//	review, err := reviews.Generate(ctx, "Summarize: ...")
type StructuredClient[T any] struct {
	client    *Client
	validator *validate.Validator
}

// FromBaseClient wraps an existing client. It fails when d cannot be compiled.
func FromBaseClient[T any](base *Client, d *schema.Descriptor) (*StructuredClient[T], error) {
	if base == nil {
		return nil, errors.New("client: nil base client")
	}
	v, err := validate.New(d)
	if err != nil {
		return nil, err
	}
	return &StructuredClient[T]{client: base, validator: v}, nil
}

// NewStructured builds a Client from cfg and wraps it.
func NewStructured[T any](cfg ai.Config, d *schema.Descriptor, opts ...func(*ClientOptions)) (*StructuredClient[T], error) {
	base, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return FromBaseClient[T](base, d)
}

// Generate returns the decoded instance.
func (sc *StructuredClient[T]) Generate(ctx context.Context, prompt string) (*T, error) {
	data, _, err := sc.GenerateInstance(ctx, prompt)
	return data, err
}

// GenerateInstance returns the decoded instance together with the Instance
// it was decoded from.
func (sc *StructuredClient[T]) GenerateInstance(ctx context.Context, prompt string) (*T, *Instance, error) {
	instance, err := sc.client.generate(ctx, prompt, sc.validator)
	if err != nil {
		return nil, nil, err
	}

	data := new(T)
	if err := json.Unmarshal(instance.JSON, data); err != nil {
		return nil, nil, &validate.ValidationError{
			Reason: validate.ReasonDecode,
			Raw:    instance.Completion.Text,
			Err:    err,
		}
	}
	return data, instance, nil
}

// Descriptor returns the descriptor instances are validated against.
func (sc *StructuredClient[T]) Descriptor() *schema.Descriptor {
	return sc.validator.Descriptor()
}

// Client returns the underlying client.
func (sc *StructuredClient[T]) Client() *Client {
	return sc.client
}
