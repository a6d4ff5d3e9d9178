package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability"
)

const (
	// DefaultModel is used when ai.Config.Model is empty.
	DefaultModel = "gpt-4o"

	// SystemPrompt is sent ahead of every user prompt. The json_object
	// response format requires the word JSON to appear in the messages.
	SystemPrompt = "You are a helpful assistant that outputs JSON."
)

// Provider wraps an openai.Client.
type Provider struct {
	client     openai.Client
	hasKey     bool
	model      string
	nativeJSON bool
}

var _ ai.Provider = (*Provider)(nil)

// New builds the SDK client. cfg.BaseURL targets any OpenAI-compatible server.
func New(cfg ai.Config, opts ...ai.Option) *Provider {
	o := ai.ApplyOptions(opts...)

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(o.HTTPClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client:     openai.NewClient(reqOpts...),
		hasKey:     cfg.APIKey != "",
		model:      model,
		nativeJSON: cfg.NativeJSON(),
	}
}

func (p *Provider) Kind() ai.Kind { return ai.KindOpenAI }

func (p *Provider) Model() string { return p.model }

// Complete sends the system prompt and the user prompt as one chat completion.
func (p *Provider) Complete(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
	if !p.hasKey {
		return nil, ai.MissingKey(ai.KindOpenAI)
	}

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, ai.KindOpenAI.String()),
			observability.String(observability.AttrLLMModel, p.model),
			observability.Bool(observability.AttrLLMNativeJSON, p.nativeJSON),
		)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(request.Prompt),
		},
	}
	if p.nativeJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		be := &ai.BackendError{Kind: ai.KindOpenAI, Model: p.model, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			be.StatusCode = apiErr.StatusCode
		}
		return nil, be
	}

	out := &ai.RawCompletion{
		Provider:   ai.KindOpenAI,
		Model:      p.model,
		ID:         resp.ID,
		NativeJSON: p.nativeJSON,
	}
	if resp.Model != "" {
		out.Model = resp.Model
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
		out.FinishReason = resp.Choices[0].FinishReason
	}
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, out.ID),
			observability.String(observability.AttrLLMFinishReason, out.FinishReason),
		)
	}
	return out, nil
}
