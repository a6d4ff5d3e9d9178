package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/replicator/core/parse"
	"github.com/leofalp/replicator/core/schema"
	"github.com/leofalp/replicator/core/validate"
	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability"
)

// ========== Mock Types ==========

// mockProvider returns a fixed completion text and records the prompts it saw.
type mockProvider struct {
	text string
	err  error

	mu      sync.Mutex
	prompts []string
}

func (m *mockProvider) Complete(_ context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, request.Prompt)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return &ai.RawCompletion{Text: m.text, Provider: ai.KindOpenAI, Model: "mock-model", ID: "resp-1"}, nil
}

func (m *mockProvider) Kind() ai.Kind { return ai.KindOpenAI }
func (m *mockProvider) Model() string { return "mock-model" }

// recordingObserver captures the span events of every span it starts.
type recordingObserver struct {
	observability.Provider

	mu     sync.Mutex
	events []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{Provider: observability.Nop()}
}

func (r *recordingObserver) StartSpan(ctx context.Context, _ string, _ ...observability.Attribute) (context.Context, observability.Span) {
	ctx, span := observability.Nop().StartSpan(ctx, "")
	return ctx, &recordingSpan{Span: span, observer: r}
}

func (r *recordingObserver) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type recordingSpan struct {
	observability.Span
	observer *recordingObserver
}

func (s *recordingSpan) AddEvent(name string, _ ...observability.Attribute) {
	s.observer.mu.Lock()
	s.observer.events = append(s.observer.events, name)
	s.observer.mu.Unlock()
}

func testDescriptor() *schema.Descriptor {
	return schema.Object(
		schema.Required("name", schema.String()),
		schema.Optional("pages", schema.Array(schema.String())),
	)
}

func newMockClient(t *testing.T, text string, opts ...func(*ClientOptions)) (*Client, *mockProvider) {
	t.Helper()
	provider := &mockProvider{text: text}
	c, err := New(ai.Config{Kind: ai.KindOpenAI}, append([]func(*ClientOptions){WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	return c, provider
}

// ========== Construction ==========

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ai.Config
		wantErr bool
	}{
		{name: "google", cfg: ai.Config{Kind: ai.KindGoogle, APIKey: "k"}},
		{name: "openai", cfg: ai.Config{Kind: ai.KindOpenAI, APIKey: "k"}},
		{name: "anthropic", cfg: ai.Config{Kind: ai.KindAnthropic, APIKey: "k"}},
		{name: "missing key still builds", cfg: ai.Config{Kind: ai.KindGoogle}},
		{name: "unknown kind", cfg: ai.Config{Kind: "cohere", APIKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Kind, c.Provider().Kind())
			assert.NotNil(t, c.Observer())
		})
	}
}

// ========== Generate scenarios ==========

func TestGenerate_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantJSON     string
		wantStrategy parse.Strategy
	}{
		{
			name:         "fenced block",
			text:         "```json\n{\"name\":\"a\"}\n```",
			wantJSON:     `{"name":"a"}`,
			wantStrategy: parse.StrategyDirect,
		},
		{
			name:         "schema echo followed by instance",
			text:         `{"$defs":{},"type":"object"}{"name":"todo-app","pages":[]}`,
			wantJSON:     `{"name":"todo-app","pages":[]}`,
			wantStrategy: parse.StrategySplit,
		},
		{
			name:         "last of several objects in prose",
			text:         `Here you go: {"name":"x"} and on second thought {"name":"y"} is better.`,
			wantJSON:     `{"name":"y"}`,
			wantStrategy: parse.StrategyBraceScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newMockClient(t, tt.text)

			instance, err := c.Generate(context.Background(), "make an app", testDescriptor())
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(instance.JSON))
			assert.Equal(t, tt.wantStrategy, instance.Strategy)
			assert.Equal(t, tt.text, instance.Completion.Text)
			assert.NotEqual(t, "", instance.RequestID.String())
		})
	}
}

func TestGenerate_SchemaEchoOnly(t *testing.T) {
	echo := `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`
	c, _ := newMockClient(t, echo)

	_, err := c.Generate(context.Background(), "make an app", testDescriptor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrValidation))

	var ve *validate.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, validate.ReasonSchemaEcho, ve.Reason)
	assert.Equal(t, echo, ve.Raw)
}

func TestGenerate_NotJSON(t *testing.T) {
	c, _ := newMockClient(t, "I cannot help with that.")

	_, err := c.Generate(context.Background(), "make an app", testDescriptor())
	var ve *validate.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, validate.ReasonNotJSON, ve.Reason)
	assert.Equal(t, "I cannot help with that.", ve.Raw)
}

func TestGenerate_SchemaMismatch(t *testing.T) {
	c, _ := newMockClient(t, `{"pages":["a"]}`)

	_, err := c.Generate(context.Background(), "p", testDescriptor())
	var ve *validate.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, validate.ReasonMismatch, ve.Reason)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "missing properties: 'name'", ve.Violations[0].Message)
}

func TestGenerate_Repair(t *testing.T) {
	text := `{"name": "a",}`

	c, _ := newMockClient(t, text)
	_, err := c.Generate(context.Background(), "p", testDescriptor())
	assert.Error(t, err)

	repairing, _ := newMockClient(t, text, WithRepair())
	instance, err := repairing.Generate(context.Background(), "p", testDescriptor())
	require.NoError(t, err)
	assert.Equal(t, parse.StrategyRepair, instance.Strategy)
	assert.JSONEq(t, `{"name":"a"}`, string(instance.JSON))
}

func TestGenerate_PromptCarriesSchema(t *testing.T) {
	c, provider := newMockClient(t, `{"name":"a"}`)

	_, err := c.Generate(context.Background(), "  build a todo app  ", testDescriptor())
	require.NoError(t, err)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "build a todo app\n\nYou must respond with a valid JSON object matching this schema:")
	assert.Contains(t, provider.prompts[0], `"required": [`)
}

func TestGenerate_BackendErrorPassesThrough(t *testing.T) {
	cause := &ai.BackendError{Kind: ai.KindOpenAI, Model: "mock-model", StatusCode: 500, Err: errors.New("upstream")}
	provider := &mockProvider{err: cause}
	c, err := New(ai.Config{Kind: ai.KindOpenAI}, WithProvider(provider))
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p", testDescriptor())
	assert.Same(t, cause, err)
	assert.True(t, errors.Is(err, ai.ErrBackend))
	assert.Len(t, provider.prompts, 1)
}

func TestGenerate_InvalidDescriptor(t *testing.T) {
	c, provider := newMockClient(t, `{}`)

	_, err := c.Generate(context.Background(), "p", nil)
	assert.Error(t, err)
	assert.Empty(t, provider.prompts)
}

// ========== Missing credential ==========

func TestGenerate_MissingKeyMakesNoRequest(t *testing.T) {
	for _, kind := range ai.Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			var requests atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				requests.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			c, err := New(ai.Config{Kind: kind, BaseURL: server.URL}, WithHTTPClient(server.Client()))
			require.NoError(t, err)

			_, err = c.Generate(context.Background(), "p", testDescriptor())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ai.ErrConfiguration))

			var ce *ai.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, kind, ce.Kind)
			assert.Equal(t, int32(0), requests.Load())
		})
	}
}

// ========== Middleware and observability ==========

func TestGenerate_MiddlewareOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	tag := func(name string) Middleware {
		return func(next CompleteFunc) CompleteFunc {
			return func(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				return next(ctx, request)
			}
		}
	}

	c, _ := newMockClient(t, `{"name":"a"}`, WithMiddleware(tag("outer"), nil, tag("inner")))
	_, err := c.Generate(context.Background(), "p", testDescriptor())
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestGenerate_MaxTokens(t *testing.T) {
	var seen int
	capture := func(next CompleteFunc) CompleteFunc {
		return func(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
			seen = request.MaxTokens
			return next(ctx, request)
		}
	}

	c, _ := newMockClient(t, `{"name":"a"}`, WithMiddleware(capture))
	_, err := c.Generate(context.Background(), "p", testDescriptor())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTokens, seen)

	c, _ = newMockClient(t, `{"name":"a"}`, WithMiddleware(capture), WithMaxTokens(128))
	_, err = c.Generate(context.Background(), "p", testDescriptor())
	require.NoError(t, err)
	assert.Equal(t, 128, seen)
}

func TestGenerate_StateEvents(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []State
	}{
		{
			name: "found",
			text: `{"name":"a"}`,
			want: []State{StateRequested, StateResponseReceived, StateSanitized, StateExtractedFound, StateValidatedSuccess},
		},
		{
			name: "not found",
			text: `no json here`,
			want: []State{StateRequested, StateResponseReceived, StateSanitized, StateExtractedNotFound, StateValidatedFailure},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := newRecordingObserver()
			c, _ := newMockClient(t, tt.text, WithObserver(observer))

			_, _ = c.Generate(context.Background(), "p", testDescriptor())

			var want []string
			for _, s := range tt.want {
				want = append(want, observability.EventStatePrefix+string(s))
			}
			assert.Equal(t, want, observer.states())
			assert.True(t, tt.want[len(tt.want)-1].Terminal())
		})
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	c, provider := newMockClient(t, "```json\n{\"name\":\"a\"}\n```")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Generate(context.Background(), "p", testDescriptor())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, provider.prompts, 16)
}
