package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/replicator/core/parse"
	"github.com/leofalp/replicator/core/prompt"
	"github.com/leofalp/replicator/core/schema"
	"github.com/leofalp/replicator/core/validate"
	"github.com/leofalp/replicator/internal/utils"
	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/ai/anthropic"
	"github.com/leofalp/replicator/providers/ai/gemini"
	"github.com/leofalp/replicator/providers/ai/openai"
	"github.com/leofalp/replicator/providers/observability"
)

// Client is immutable after New and safe for concurrent use.
type Client struct {
	provider    ai.Provider
	observer    observability.Provider
	complete    CompleteFunc
	extractOpts []parse.Option
	maxTokens   int

	// missingKey is set when the config has no credential. Every Generate
	// returns it before touching the network.
	missingKey *ai.ConfigurationError
}

// Instance is one validated result of Generate.
type Instance struct {
	// JSON is the candidate text that passed validation.
	JSON json.RawMessage
	// Value is JSON decoded into generic Go values (numbers as json.Number).
	Value      any
	Completion *ai.RawCompletion
	Strategy   parse.Strategy
	RequestID  uuid.UUID
}

// New resolves the backend for cfg.Kind and builds it. A missing API key is
// not an error here: it is logged and reported by every Generate call.
func New(cfg ai.Config, opts ...func(*ClientOptions)) (*Client, error) {
	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	observer := options.Observer
	if observer == nil {
		observer = observability.Nop()
	}

	provider := options.Provider
	if provider == nil {
		var err error
		provider, err = newProvider(cfg, options)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		provider:  provider,
		observer:  observer,
		maxTokens: options.MaxTokens,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if options.Repair {
		c.extractOpts = append(c.extractOpts, parse.WithRepair())
	}

	if options.Provider == nil && cfg.APIKey == "" {
		c.missingKey = ai.MissingKey(cfg.Kind)
		observer.Warn(context.Background(), "provider credential is not set",
			observability.String(observability.AttrLLMProvider, cfg.Kind.String()),
			observability.String(observability.AttrError, c.missingKey.Error()),
		)
	}

	middlewares := options.Middlewares
	if options.Observer != nil {
		middlewares = append([]Middleware{NewObservabilityMiddleware(observer, provider.Kind(), provider.Model())}, middlewares...)
	}
	c.complete = buildChain(provider, middlewares)

	return c, nil
}

func newProvider(cfg ai.Config, options *ClientOptions) (ai.Provider, error) {
	var aiOpts []ai.Option
	if options.HTTPClient != nil {
		aiOpts = append(aiOpts, ai.WithHTTPClient(options.HTTPClient))
	}

	switch cfg.Kind {
	case ai.KindGoogle:
		p, err := gemini.New(context.Background(), cfg, aiOpts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ai.KindOpenAI:
		return openai.New(cfg, aiOpts...), nil
	case ai.KindAnthropic:
		return anthropic.New(cfg, aiOpts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected one of google, openai, anthropic)", cfg.Kind)
	}
}

// Provider returns the backend requests are sent to.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Observer returns the configured observability provider, never nil.
func (c *Client) Observer() observability.Provider {
	return c.observer
}

// Generate asks the backend for an instance of d and returns the first
// candidate that validates. The descriptor is compiled on every call; use a
// StructuredClient to compile it once.
func (c *Client) Generate(ctx context.Context, userPrompt string, d *schema.Descriptor) (*Instance, error) {
	v, err := validate.New(d)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return c.generate(ctx, userPrompt, v)
}

// run tracks the state of one Generate call for observability.
type run struct {
	ctx   context.Context
	span  observability.Span
	state State
}

func (r *run) enter(s State, attrs ...observability.Attribute) {
	r.state = s
	r.span.AddEvent(observability.EventStatePrefix+string(s), attrs...)
}

func (c *Client) generate(ctx context.Context, userPrompt string, v *validate.Validator) (*Instance, error) {
	requestID := uuid.New()
	start := time.Now()

	ctx, span := c.observer.StartSpan(ctx, observability.SpanGenerate,
		observability.String(observability.AttrGenerateRequestID, requestID.String()),
		observability.String(observability.AttrLLMProvider, c.provider.Kind().String()),
		observability.String(observability.AttrLLMModel, c.provider.Model()),
	)
	defer span.End()
	r := &run{ctx: ctx, span: span, state: StateIdle}

	if c.missingKey != nil {
		return nil, c.fail(r, start, OutcomeConfiguration, c.missingKey)
	}

	composed, err := prompt.Compose(userPrompt, v.Descriptor())
	if err != nil {
		return nil, c.fail(r, start, OutcomePrompt, err)
	}

	r.enter(StateRequested, observability.Int(observability.AttrGeneratePromptLength, len(composed)))
	completion, err := c.complete(ctx, ai.CompletionRequest{Prompt: composed, MaxTokens: c.maxTokens})
	if err != nil {
		outcome := OutcomeBackend
		if errors.Is(err, ai.ErrConfiguration) {
			outcome = OutcomeConfiguration
		}
		return nil, c.fail(r, start, outcome, err)
	}
	if completion == nil {
		return nil, c.fail(r, start, OutcomeBackend, &ai.BackendError{
			Kind:  c.provider.Kind(),
			Model: c.provider.Model(),
			Err:   errors.New("backend returned no completion"),
		})
	}
	r.enter(StateResponseReceived, observability.Int(observability.AttrGenerateResponseLength, len(completion.Text)))

	text := parse.Sanitize(completion.Text)
	r.enter(StateSanitized)

	candidate, found := parse.Extract(text, c.extractOpts...)
	if found {
		r.enter(StateExtractedFound, observability.String(observability.AttrExtractStrategy, string(candidate.Strategy)))
	} else {
		// Last resort: let the validator judge the sanitized text as is.
		candidate = parse.Candidate{Text: text, Strategy: parse.StrategyRaw}
		r.enter(StateExtractedNotFound)
		c.observer.Debug(ctx, "no JSON candidate found, validating sanitized text",
			observability.String(observability.AttrGenerateRequestID, requestID.String()),
			observability.Error(parse.ErrNotFound),
		)
	}

	value, err := v.Validate(candidate.Text, completion.Text)
	if err != nil {
		var ve *validate.ValidationError
		if errors.As(err, &ve) {
			span.SetAttributes(observability.Int(observability.AttrValidationViolations, len(ve.Violations)))
			c.observer.Debug(ctx, "candidate rejected",
				observability.String(observability.AttrExtractStrategy, string(candidate.Strategy)),
				observability.String("reason", ve.Reason),
				observability.String("violations", utils.JSONToString(ve.Violations)),
				observability.String("raw", utils.TruncateString(ve.Raw, utils.DefaultMaxStringLength)),
			)
		}
		r.enter(StateValidatedFailure)
		return nil, c.fail(r, start, OutcomeValidation, err)
	}
	r.enter(StateValidatedSuccess)

	span.SetAttributes(
		observability.String(observability.AttrExtractStrategy, string(candidate.Strategy)),
		observability.String(observability.AttrGenerateOutcome, OutcomeSuccess),
	)
	span.SetStatus(observability.StatusOK, "")
	c.observer.Counter(observability.MetricGenerateCount).Add(ctx, 1,
		observability.String(observability.AttrGenerateOutcome, OutcomeSuccess),
	)
	c.observer.Counter(observability.MetricExtractStrategy).Add(ctx, 1,
		observability.String(observability.AttrExtractStrategy, string(candidate.Strategy)),
	)
	c.observer.Histogram(observability.MetricGenerateDuration).Record(ctx, float64(time.Since(start).Milliseconds()),
		observability.String(observability.AttrGenerateOutcome, OutcomeSuccess),
	)

	return &Instance{
		JSON:       json.RawMessage(candidate.Text),
		Value:      value,
		Completion: completion,
		Strategy:   candidate.Strategy,
		RequestID:  requestID,
	}, nil
}

func (c *Client) fail(r *run, start time.Time, outcome string, err error) error {
	r.span.RecordError(err)
	r.span.SetAttributes(
		observability.String(observability.AttrGenerateOutcome, outcome),
		observability.String(observability.AttrGenerateState, string(r.state)),
	)
	r.span.SetStatus(observability.StatusError, outcome)

	c.observer.Counter(observability.MetricGenerateCount).Add(r.ctx, 1,
		observability.String(observability.AttrGenerateOutcome, outcome),
	)
	c.observer.Histogram(observability.MetricGenerateDuration).Record(r.ctx, float64(time.Since(start).Milliseconds()),
		observability.String(observability.AttrGenerateOutcome, outcome),
	)
	c.observer.Warn(r.ctx, "generate failed",
		observability.String(observability.AttrGenerateOutcome, outcome),
		observability.String(observability.AttrGenerateState, string(r.state)),
		observability.Error(err),
	)
	return err
}
