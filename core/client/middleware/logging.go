package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/replicator/core/client"
	"github.com/leofalp/replicator/internal/utils"
	"github.com/leofalp/replicator/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the duration and the outcome.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds prompt and reply lengths, the backend, model and
	// finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the prompt and the reply text, each truncated to
	// 500 characters.
	//
	// Prompts and replies may contain sensitive data. Use only for local
	// debugging.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// ParseLogLevel maps "minimal", "standard" or "verbose" to a LogLevel.
// Anything else is LogLevelStandard.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "minimal":
		return LogLevelMinimal
	case "verbose":
		return LogLevelVerbose
	default:
		return LogLevelStandard
	}
}

// NewLoggingMiddleware logs every backend request and its reply on logger.
// A nil logger means slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next client.CompleteFunc) client.CompleteFunc {
		return func(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
			logger.InfoContext(ctx, "llm send", requestAttrs(request, level)...)

			start := time.Now()
			completion, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", responseAttrs(completion, elapsed, level)...)
			return completion, nil
		}
	}
}

func requestAttrs(request ai.CompletionRequest, level LogLevel) []any {
	var attrs []any

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("prompt_length", len(request.Prompt)),
			slog.Int("max_tokens", request.MaxTokens),
		)
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("prompt", utils.TruncateString(request.Prompt, truncateLen)))
	}

	return attrs
}

func responseAttrs(completion *ai.RawCompletion, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.Duration("duration", elapsed),
	}
	if completion == nil {
		return attrs
	}

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.String("provider", completion.Provider.String()),
			slog.String("model", completion.Model),
			slog.Int("response_length", len(completion.Text)),
		)
		if completion.FinishReason != "" {
			attrs = append(attrs, slog.String("finish_reason", completion.FinishReason))
		}
	}

	if level >= LogLevelVerbose && completion.Text != "" {
		attrs = append(attrs, slog.String("response", utils.TruncateString(completion.Text, truncateLen)))
	}

	return attrs
}
