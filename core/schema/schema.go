// Package schema describes the shape of a structured-output target.
//
// A Descriptor is built explicitly by the caller and rendered to JSON Schema
// text, both for the prompt and for compiling a validator. Descriptors are
// values: every builder method returns a modified copy.
//
//	d := schema.Object(
//	    schema.Required("name", schema.String().Describe("kebab-case name")),
//	    schema.Optional("theme_color", schema.String().WithDefault("slate")),
//	).WithTitle("AppSpec")
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Type is a JSON Schema primitive type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Descriptor is one node of a schema tree.
type Descriptor struct {
	Type        Type
	Title       string
	Description string
	Nullable    bool

	// Object nodes
	Properties []Property
	Required   []string
	// AllowExtra permits properties not listed in Properties.
	AllowExtra bool

	// Array nodes
	Items *Descriptor

	Enum    []any
	Default any
}

// Property is a named field of an object node. Order is preserved when
// rendering.
type Property struct {
	Name     string
	Schema   *Descriptor
	Required bool
}

// Required declares a field that must be present.
func Required(name string, d *Descriptor) Property {
	return Property{Name: name, Schema: d, Required: true}
}

// Optional declares a field that may be omitted.
func Optional(name string, d *Descriptor) Property {
	return Property{Name: name, Schema: d}
}

// Object builds an object node. Properties marked required are collected
// into the Required list in declaration order.
func Object(props ...Property) *Descriptor {
	d := &Descriptor{Type: TypeObject, Properties: make([]Property, 0, len(props)), AllowExtra: true}
	for _, p := range props {
		d.Properties = append(d.Properties, p)
		if p.Required {
			d.Required = append(d.Required, p.Name)
		}
	}
	return d
}

func String() *Descriptor  { return &Descriptor{Type: TypeString} }
func Integer() *Descriptor { return &Descriptor{Type: TypeInteger} }
func Number() *Descriptor  { return &Descriptor{Type: TypeNumber} }
func Boolean() *Descriptor { return &Descriptor{Type: TypeBoolean} }

// Array builds an array node whose elements match items.
func Array(items *Descriptor) *Descriptor {
	return &Descriptor{Type: TypeArray, Items: items}
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.Properties = slices.Clone(d.Properties)
	c.Required = slices.Clone(d.Required)
	c.Enum = slices.Clone(d.Enum)
	return &c
}

// Describe returns a copy with the description set.
func (d *Descriptor) Describe(description string) *Descriptor {
	c := d.clone()
	c.Description = description
	return c
}

// WithTitle returns a copy with the title set.
func (d *Descriptor) WithTitle(title string) *Descriptor {
	c := d.clone()
	c.Title = title
	return c
}

// OrNull returns a copy that also accepts null.
func (d *Descriptor) OrNull() *Descriptor {
	c := d.clone()
	c.Nullable = true
	return c
}

// WithDefault returns a copy advertising a default value.
func (d *Descriptor) WithDefault(v any) *Descriptor {
	c := d.clone()
	c.Default = v
	return c
}

// OneOf returns a copy restricted to the given values.
func (d *Descriptor) OneOf(values ...any) *Descriptor {
	c := d.clone()
	c.Enum = values
	return c
}

// Strict returns a copy of an object node that rejects unknown properties.
func (d *Descriptor) Strict() *Descriptor {
	c := d.clone()
	c.AllowExtra = false
	return c
}

// Property looks up a field by name.
func (d *Descriptor) Property(name string) (*Descriptor, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Validate reports structural mistakes in the tree: unknown types, arrays
// without items, duplicate or empty property names.
func (d *Descriptor) Validate() error {
	return d.check("$")
}

func (d *Descriptor) check(path string) error {
	if d == nil {
		return fmt.Errorf("%s: nil descriptor", path)
	}
	switch d.Type {
	case TypeObject:
		seen := make(map[string]bool, len(d.Properties))
		for _, p := range d.Properties {
			if p.Name == "" {
				return fmt.Errorf("%s: property with empty name", path)
			}
			if seen[p.Name] {
				return fmt.Errorf("%s: duplicate property %q", path, p.Name)
			}
			seen[p.Name] = true
			if err := p.Schema.check(path + "." + p.Name); err != nil {
				return err
			}
		}
		for _, r := range d.Required {
			if !seen[r] {
				return fmt.Errorf("%s: required property %q is not declared", path, r)
			}
		}
	case TypeArray:
		if d.Items == nil {
			return fmt.Errorf("%s: array without items", path)
		}
		return d.Items.check(path + "[]")
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
	default:
		return fmt.Errorf("%s: unknown type %q", path, d.Type)
	}
	return nil
}

// MarshalJSON renders the node as JSON Schema with keys in a stable order.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Descriptor) encode(buf *bytes.Buffer) error {
	w := &objectWriter{buf: buf}
	buf.WriteByte('{')

	if d.Title != "" {
		w.field("title", d.Title)
	}
	if d.Description != "" {
		w.field("description", d.Description)
	}
	if d.Nullable {
		w.field("type", []string{string(d.Type), "null"})
	} else {
		w.field("type", d.Type)
	}

	if d.Type == TypeObject {
		w.key("properties")
		buf.WriteByte('{')
		for i, p := range d.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, _ := json.Marshal(p.Name)
			buf.Write(name)
			buf.WriteByte(':')
			if err := p.Schema.encode(buf); err != nil {
				return fmt.Errorf("property %q: %w", p.Name, err)
			}
		}
		buf.WriteByte('}')
		if len(d.Required) > 0 {
			w.field("required", d.Required)
		}
		if !d.AllowExtra {
			w.field("additionalProperties", false)
		}
	}
	if d.Items != nil {
		w.key("items")
		if err := d.Items.encode(buf); err != nil {
			return fmt.Errorf("items: %w", err)
		}
	}
	if len(d.Enum) > 0 {
		w.field("enum", d.Enum)
	}
	if d.Default != nil {
		w.field("default", d.Default)
	}

	buf.WriteByte('}')
	return w.err
}

type objectWriter struct {
	buf   *bytes.Buffer
	count int
	err   error
}

func (w *objectWriter) key(k string) {
	if w.count > 0 {
		w.buf.WriteByte(',')
	}
	w.count++
	name, _ := json.Marshal(k)
	w.buf.Write(name)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(k string, v any) {
	w.key(k)
	data, err := json.Marshal(v)
	if err != nil {
		if w.err == nil {
			w.err = fmt.Errorf("%s: %w", k, err)
		}
		data = []byte("null")
	}
	w.buf.Write(data)
}

// Indent renders d as two-space indented JSON Schema.
func Indent(d *Descriptor) (string, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}
