// Package parse recovers a single JSON instance from raw model output.
//
// [Sanitize] strips markdown fences, [IsSchemaEcho] recognizes a schema that
// was sent back instead of data, and [Extract] runs the ordered strategies:
// direct parse, split on the last "}{", a backward scan over balanced brace
// spans and, when enabled, jsonrepair. Absence of a candidate is reported
// through the boolean result rather than an error.
//
// Strategies that look at several fragments prefer the last one, because
// models tend to echo the schema first and answer last. A model that answers
// first and echoes afterwards defeats this ordering.
package parse
