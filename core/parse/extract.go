package parse

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNotFound describes an extraction that found no acceptable candidate.
// Extract never returns it; callers use it for logging.
var ErrNotFound = errors.New("no JSON instance found")

// Strategy names the step that produced a candidate.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategySplit     Strategy = "split"
	StrategyBraceScan Strategy = "brace_scan"
	StrategyRepair    Strategy = "repair"

	// StrategyRaw marks the sanitized text used as is after extraction failed.
	StrategyRaw Strategy = "raw"
)

// Candidate is a span of text holding one JSON value.
type Candidate struct {
	Text     string
	Value    any
	Strategy Strategy
}

type options struct {
	repair bool
}

// Option tunes Extract.
type Option func(*options)

// WithRepair enables the jsonrepair strategy, tried after all others.
func WithRepair() Option {
	return func(o *options) {
		o.repair = true
	}
}

// Extract returns the first candidate, in strategy order, that parses and is
// not a schema echo. It is idempotent: Extract(c.Text) yields c.Text again.
func Extract(text string, opts ...Option) (Candidate, bool) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if v, ok := accept(text); ok {
		return Candidate{Text: text, Value: v, Strategy: StrategyDirect}, true
	}

	if i := strings.LastIndex(text, "}{"); i >= 0 {
		segment := text[i+1:]
		if v, ok := accept(segment); ok {
			return Candidate{Text: segment, Value: v, Strategy: StrategySplit}, true
		}
	}

	spans := braceSpans(text)
	for i := len(spans) - 1; i >= 0; i-- {
		segment := text[spans[i][0]:spans[i][1]]
		if v, ok := accept(segment); ok {
			return Candidate{Text: segment, Value: v, Strategy: StrategyBraceScan}, true
		}
	}

	if o.repair {
		if repaired, err := jsonrepair.JSONRepair(text); err == nil {
			if v, ok := accept(repaired); ok {
				return Candidate{Text: repaired, Value: v, Strategy: StrategyRepair}, true
			}
		}
	}

	return Candidate{}, false
}

// Decode parses text as exactly one JSON value. Numbers are kept as
// json.Number.
func Decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func accept(text string) (any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	v, err := Decode(text)
	if err != nil || IsSchemaEcho(v) {
		return nil, false
	}
	return v, true
}

// braceSpans returns the [start, end) offsets of every maximal balanced
// {...} span, in order of appearance. Braces inside JSON strings are ignored;
// a "{" that never closes is skipped and the scan resumes after it.
func braceSpans(text string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		if end := matchBrace(text, i); end > 0 {
			spans = append(spans, [2]int{i, end})
			i = end - 1
		}
	}
	return spans
}

// matchBrace returns the offset just past the "}" closing the "{" at start,
// or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for j := start; j < len(text); j++ {
		c := text[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return -1
}
