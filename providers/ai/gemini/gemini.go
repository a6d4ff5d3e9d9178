package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability"
)

// DefaultModel is used when ai.Config.Model is empty.
const DefaultModel = "gemini-2.0-flash"

const jsonMIMEType = "application/json"

// Provider wraps a genai.Client bound to the Gemini API backend.
type Provider struct {
	client     *genai.Client // nil when no API key was configured
	model      string
	nativeJSON bool
}

var _ ai.Provider = (*Provider)(nil)

// New builds the SDK client. With an empty API key no client is created and
// Complete returns *ai.ConfigurationError.
func New(ctx context.Context, cfg ai.Config, opts ...ai.Option) (*Provider, error) {
	o := ai.ApplyOptions(opts...)

	p := &Provider{
		model:      cfg.Model,
		nativeJSON: cfg.NativeJSON(),
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if cfg.APIKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  o.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *Provider) Kind() ai.Kind { return ai.KindGoogle }

func (p *Provider) Model() string { return p.model }

// Complete sends the prompt as a single user content.
func (p *Provider) Complete(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
	if p.client == nil {
		return nil, ai.MissingKey(ai.KindGoogle)
	}

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, ai.KindGoogle.String()),
			observability.String(observability.AttrLLMModel, p.model),
			observability.Bool(observability.AttrLLMNativeJSON, p.nativeJSON),
		)
	}

	config := &genai.GenerateContentConfig{}
	if p.nativeJSON {
		config.ResponseMIMEType = jsonMIMEType
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(request.Prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		be := &ai.BackendError{Kind: ai.KindGoogle, Model: p.model, Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			be.StatusCode = apiErr.Code
		}
		return nil, be
	}

	out := &ai.RawCompletion{
		Text:       responseText(resp),
		Provider:   ai.KindGoogle,
		Model:      p.model,
		ID:         resp.ResponseID,
		NativeJSON: p.nativeJSON,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, out.ID),
			observability.String(observability.AttrLLMFinishReason, out.FinishReason),
		)
	}
	return out, nil
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
