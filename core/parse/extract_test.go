package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantText     string
		wantStrategy Strategy
	}{
		{
			name:         "single object",
			input:        `{"name":"a"}`,
			wantText:     `{"name":"a"}`,
			wantStrategy: StrategyDirect,
		},
		{
			name:         "schema then instance",
			input:        `{"$defs":{},"type":"object"}{"name":"todo-app","pages":[]}`,
			wantText:     `{"name":"todo-app","pages":[]}`,
			wantStrategy: StrategySplit,
		},
		{
			name:         "last of several wins",
			input:        `Sure! {"name":"x"} and also, on second thought, {"name":"y"} done.`,
			wantText:     `{"name":"y"}`,
			wantStrategy: StrategyBraceScan,
		},
		{
			name:         "trailing echo skipped",
			input:        `{"name":"x"} then {"type":"object","properties":{}}`,
			wantText:     `{"name":"x"}`,
			wantStrategy: StrategyBraceScan,
		},
		{
			name:         "braces inside strings",
			input:        `note: {"code":"function f() { return \"}\"; }"} end`,
			wantText:     `{"code":"function f() { return \"}\"; }"}`,
			wantStrategy: StrategyBraceScan,
		},
		{
			name:         "prefill doubled brace",
			input:        `{{"name":"z"}`,
			wantText:     `{"name":"z"}`,
			wantStrategy: StrategyBraceScan,
		},
		{
			name:         "split segment with prose falls through to scan",
			input:        `{"type":"object"}{"name":"w"} hope this helps`,
			wantText:     `{"name":"w"}`,
			wantStrategy: StrategyBraceScan,
		},
		{
			name:         "non-object json",
			input:        `["a","b"]`,
			wantText:     `["a","b"]`,
			wantStrategy: StrategyDirect,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.input)
			require.True(t, ok, "expected a candidate")
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantStrategy, got.Strategy)
			assert.False(t, IsSchemaEcho(got.Value))
		})
	}
}

func TestExtract_NotFound(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"no json here",
		`{"$defs":{"FileSpec":{}},"type":"object","properties":{}}`,
		`{"type":"object"}{"definitions":{}}`,
		`{"unterminated": "value"`,
		`{name: 'x'}`,
	}
	for _, in := range inputs {
		got, ok := Extract(in)
		assert.False(t, ok, "input %q", in)
		assert.Equal(t, Candidate{}, got)
	}
}

func TestExtract_FencedMatchesUnfenced(t *testing.T) {
	plain, ok := Extract(Sanitize(`{"name":"a"}`))
	require.True(t, ok)
	fenced, ok := Extract(Sanitize("```json\n{\"name\":\"a\"}\n```"))
	require.True(t, ok)

	assert.Equal(t, plain, fenced)
	assert.Equal(t, map[string]any{"name": "a"}, fenced.Value)
}

func TestExtract_Repair(t *testing.T) {
	_, ok := Extract(`{name: 'x', count: 2,}`)
	require.False(t, ok, "repair must be opt-in")

	got, ok := Extract(`{name: 'x', count: 2,}`, WithRepair())
	require.True(t, ok)
	assert.Equal(t, StrategyRepair, got.Strategy)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.Text), &decoded))
	assert.Equal(t, "x", decoded["name"])
	assert.EqualValues(t, 2, decoded["count"])
}

func TestExtract_RepairStillRejectsEcho(t *testing.T) {
	_, ok := Extract(`{type: 'object', title: 'Thing'`, WithRepair())
	assert.False(t, ok)
}

func TestDecode(t *testing.T) {
	v, err := Decode(` {"n": 12345678901234567890} `)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["n"])

	_, err = Decode(`{"a":1}{"b":2}`)
	assert.Error(t, err)

	_, err = Decode(`{"a":1} trailing`)
	assert.Error(t, err)
}

func TestBraceSpans(t *testing.T) {
	text := `a {"x":{"y":1}} b { c {"z":"}"} {`
	spans := braceSpans(text)
	var got []string
	for _, s := range spans {
		got = append(got, text[s[0]:s[1]])
	}
	assert.Equal(t, []string{`{"x":{"y":1}}`, `{"z":"}"}`}, got)
}
