package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/replicator/internal/utils"
	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability"
)

const (
	// DefaultModel is used when ai.Config.Model is empty.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultMaxTokens is sent when the request does not set a limit.
	// The Messages API requires max_tokens on every request.
	DefaultMaxTokens = 4096

	defaultBaseURL   = "https://api.anthropic.com/v1"
	messagesEndpoint = "/messages"
	anthropicVersion = "2023-06-01"

	prefill = "{"
)

// Provider calls the Messages API over plain HTTP.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	prefill bool
	client  *http.Client
}

var _ ai.Provider = (*Provider)(nil)

// New builds a Provider from cfg. An empty API key is accepted here and
// reported by Complete.
func New(cfg ai.Config, opts ...ai.Option) *Provider {
	o := ai.ApplyOptions(opts...)

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		prefill: cfg.NativeJSON(),
		client:  o.HTTPClient,
	}
}

func (p *Provider) Kind() ai.Kind { return ai.KindAnthropic }

func (p *Provider) Model() string { return p.model }

// Complete sends the prompt as a single user turn.
func (p *Provider) Complete(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
	if p.apiKey == "" {
		return nil, ai.MissingKey(ai.KindAnthropic)
	}

	span := observability.SpanFromContext(ctx)
	url := p.baseURL + messagesEndpoint
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, ai.KindAnthropic.String()),
			observability.String(observability.AttrLLMEndpoint, url),
			observability.String(observability.AttrLLMModel, p.model),
			observability.Bool(observability.AttrLLMPrefilled, p.prefill),
		)
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	body := messagesRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: request.Prompt}},
	}
	if p.prefill {
		body.Messages = append(body.Messages, message{Role: "assistant", Content: prefill})
	}

	res, out, err := utils.DoPostSync[messagesResponse](ctx, p.client, url, "", body,
		utils.WithHeader("x-api-key", p.apiKey),
		utils.WithHeader("anthropic-version", anthropicVersion),
	)
	if err != nil {
		return nil, p.backendError(res, err)
	}

	text := out.text()
	if p.prefill {
		text = prefill + text
	}

	model := out.Model
	if model == "" {
		model = p.model
	}
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, out.ID),
			observability.String(observability.AttrLLMFinishReason, out.StopReason),
		)
	}

	return &ai.RawCompletion{
		Text:         text,
		Provider:     ai.KindAnthropic,
		Model:        model,
		ID:           out.ID,
		FinishReason: out.StopReason,
		Prefilled:    p.prefill,
	}, nil
}

// backendError keeps the transport error as the cause and, for API errors,
// surfaces Anthropic's own message.
func (p *Provider) backendError(res *http.Response, err error) error {
	be := &ai.BackendError{Kind: ai.KindAnthropic, Model: p.model, Err: err}
	if res != nil {
		be.StatusCode = res.StatusCode
	}

	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		var apiErr errorResponse
		if json.Unmarshal([]byte(statusErr.Body), &apiErr) == nil && apiErr.Error.Message != "" {
			be.Err = fmt.Errorf("%s: %s: %w", apiErr.Error.Type, apiErr.Error.Message, err)
		}
	}
	return be
}
