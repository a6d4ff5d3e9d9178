package slogobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/replicator/providers/observability"
)

func TestObserver_SpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithOutput(&buf), WithLevel(slog.LevelDebug), WithFormat(FormatCompact))

	ctx, span := obs.StartSpan(context.Background(), observability.SpanGenerate,
		observability.String(observability.AttrLLMProvider, "google"))
	if observability.SpanFromContext(ctx) != span {
		t.Fatal("StartSpan should attach the span to the returned context")
	}

	span.AddEvent(observability.EventStatePrefix + "sanitized")
	span.SetAttributes(observability.String(observability.AttrExtractStrategy, "direct"))
	span.SetStatus(observability.StatusOK, "")
	span.End()
	span.End()

	out := buf.String()
	for _, want := range []string{"span started", "state.sanitized", "span ended", `"extract.strategy":"direct"`, `"status":"ok"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Count(out, "span ended") != 1 {
		t.Error("End should only log once")
	}
}

func TestObserver_ErrorSpanLogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithOutput(&buf), WithLevel(slog.LevelWarn))

	_, span := obs.StartSpan(context.Background(), observability.SpanLLMRequest)
	span.RecordError(errors.New("connection refused"))
	span.RecordError(nil)
	span.SetStatus(observability.StatusError, "backend")
	span.End()

	out := buf.String()
	if !strings.Contains(out, "WARN span ended") || !strings.Contains(out, "connection refused") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestObserver_Counters(t *testing.T) {
	obs := New(WithOutput(&bytes.Buffer{}))
	ctx := context.Background()

	obs.Counter(observability.MetricGenerateCount).Add(ctx, 1)
	obs.Counter(observability.MetricGenerateCount).Add(ctx, 2)
	obs.Histogram(observability.MetricGenerateDuration).Record(ctx, 12)

	if got := obs.CounterValue(observability.MetricGenerateCount); got != 3 {
		t.Errorf("CounterValue = %d, want 3", got)
	}
	if got := obs.CounterValue("missing"); got != 0 {
		t.Errorf("unknown counter = %d, want 0", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := New(WithLogger(logger), WithFormat(FormatJSON))

	obs.Info(context.Background(), "hello", observability.Int("n", 1))
	if obs.Logger() != logger {
		t.Error("WithLogger should be used as is")
	}
	if !strings.Contains(buf.String(), "msg=hello n=1") {
		t.Errorf("expected text handler output, got %q", buf.String())
	}
}
