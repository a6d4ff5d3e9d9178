package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(format Format, level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(NewHandler(&HandlerOptions{Format: format, Level: level, Output: &buf})), &buf
}

func TestHandler_Compact(t *testing.T) {
	logger, buf := newTestLogger(FormatCompact, slog.LevelInfo)
	logger.Info("generate finished", "extract.strategy", "split", "attempts", 1)

	out := buf.String()
	for _, want := range []string{" INFO ", "generate finished", `{"attempts":1,"extract.strategy":"split"}`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact output should be a single line: %q", out)
	}
}

func TestHandler_Pretty(t *testing.T) {
	logger, buf := newTestLogger(FormatPretty, slog.LevelInfo)
	logger.Warn("file skipped", "app.file.path", "app/page.tsx", "error", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "WARN  | file skipped") {
		t.Errorf("unexpected header in %q", out)
	}
	if !strings.Contains(out, "    app.file.path = app/page.tsx\n    error = boom\n") {
		t.Errorf("attributes should be sorted and indented: %q", out)
	}
}

func TestHandler_JSON(t *testing.T) {
	logger, buf := newTestLogger(FormatJSON, slog.LevelInfo)
	logger.With("llm.provider", "openai").WithGroup("req").Error("backend failed", "status", 500)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["level"] != "ERROR" || record["msg"] != "backend failed" {
		t.Errorf("unexpected standard fields: %v", record)
	}
	if record["llm.provider"] != "openai" {
		t.Errorf("missing handler attribute: %v", record)
	}
	if record["req.status"] != float64(500) {
		t.Errorf("group prefix not applied: %v", record)
	}
}

func TestHandler_LevelFilter(t *testing.T) {
	logger, buf := newTestLogger(FormatCompact, slog.LevelWarn)
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below WARN, got %q", buf.String())
	}

	logger, buf = newTestLogger(FormatCompact, LevelTrace)
	logger.Log(context.Background(), LevelTrace, "deep")
	if !strings.Contains(buf.String(), "TRACE deep") {
		t.Errorf("trace record not rendered: %q", buf.String())
	}
}

func TestHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Output: &buf, Colors: true}))
	logger.Error("red")
	if !strings.Contains(buf.String(), "\033[31mERROR"+colorReset) {
		t.Errorf("expected colored level, got %q", buf.String())
	}
}
