package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/replicator/providers/observability"
)

// HeaderOption sets an extra request header.
type HeaderOption func(h http.Header)

// WithHeader sets key to value on the outgoing request.
func WithHeader(key, value string) HeaderOption {
	return func(h http.Header) {
		h.Set(key, value)
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(e.Body, DefaultMaxStringLength))
}

// DoPostSync POSTs body as JSON to url and decodes a 2xx response into
// OutputStruct. apiKey, when set, is sent as a bearer token; headers are
// applied afterwards and may override it.
//
// Events are added to the span carried by ctx, if any. Context errors are
// returned wrapped so errors.Is(err, context.DeadlineExceeded) still holds.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	if client == nil {
		client = http.DefaultClient
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, opt := range headers {
		opt(req.Header)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int("http.request.body.size", len(payload)),
		)
	}

	start := time.Now()
	res, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error", observability.Error(err), observability.Duration(observability.AttrDuration, elapsed))
		}
		return nil, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func(b io.ReadCloser) {
		if closeErr := b.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int("http.response.body.size", len(raw)),
			observability.Duration(observability.AttrDuration, elapsed),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &StatusError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	var out OutputStruct
	if err := json.Unmarshal(raw, &out); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(raw), DefaultMaxStringLength))
	}
	return res, &out, nil
}
