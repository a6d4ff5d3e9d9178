package client

import (
	"context"
	"time"

	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability"
)

// NewObservabilityMiddleware records a span, request counters, a latency
// histogram and log entries around every backend request.
//
// The span and observer are put into the context before calling next so
// backends can attach events to them. New prepends this middleware when
// WithObserver is used, so it observes the outcome after any timeout.
func NewObservabilityMiddleware(observer observability.Provider, kind ai.Kind, model string) Middleware {
	return func(next CompleteFunc) CompleteFunc {
		return func(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
			attrs := []observability.Attribute{
				observability.String(observability.AttrLLMProvider, kind.String()),
				observability.String(observability.AttrLLMModel, model),
			}

			ctx, span := observer.StartSpan(ctx, observability.SpanLLMRequest, attrs...)
			defer span.End()
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "llm request",
				append(attrs, observability.Int(observability.AttrGeneratePromptLength, len(request.Prompt)))...,
			)

			start := time.Now()
			completion, err := next(ctx, request)
			elapsed := time.Since(start)

			observer.Histogram(observability.MetricLLMRequestDuration).Record(ctx, float64(elapsed.Milliseconds()), attrs...)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm request failed")

				observer.Error(ctx, "llm request failed",
					append(attrs,
						observability.Error(err),
						observability.Duration(observability.AttrDuration, elapsed),
					)...,
				)
				observer.Counter(observability.MetricLLMRequestCount).Add(ctx, 1,
					append(attrs, observability.String(observability.AttrStatus, "error"))...,
				)
				return nil, err
			}

			span.SetAttributes(
				observability.String(observability.AttrLLMResponseID, completion.ID),
				observability.String(observability.AttrLLMFinishReason, completion.FinishReason),
				observability.Bool(observability.AttrLLMNativeJSON, completion.NativeJSON),
				observability.Bool(observability.AttrLLMPrefilled, completion.Prefilled),
				observability.Int(observability.AttrGenerateResponseLength, len(completion.Text)),
			)
			span.SetStatus(observability.StatusOK, "")

			observer.Info(ctx, "llm request completed",
				append(attrs,
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMFinishReason, completion.FinishReason),
					observability.Int(observability.AttrGenerateResponseLength, len(completion.Text)),
				)...,
			)
			observer.Counter(observability.MetricLLMRequestCount).Add(ctx, 1,
				append(attrs, observability.String(observability.AttrStatus, "success"))...,
			)

			return completion, nil
		}
	}
}
