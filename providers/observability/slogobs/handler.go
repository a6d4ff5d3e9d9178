package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	Level  slog.Level
	Output io.Writer // defaults to os.Stderr
	Colors bool      // auto-enabled when Output is a terminal
}

// Handler is a slog.Handler rendering the compact, pretty and json formats.
type Handler struct {
	format Format
	level  slog.Level
	colors bool
	attrs  []slog.Attr
	prefix string

	mu  *sync.Mutex
	out io.Writer
}

// NewHandler creates a Handler. A nil opts yields compact INFO output on stderr.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	format := opts.Format
	if format == "" {
		format = FormatCompact
	}
	colors := opts.Colors
	if !colors && format != FormatJSON {
		if f, ok := out.(*os.File); ok {
			colors = isTerminal(f)
		}
	}
	return &Handler{
		format: format,
		level:  opts.Level,
		colors: colors,
		mu:     &sync.Mutex{},
		out:    out,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})
	for k, v := range fields {
		if err, ok := v.(error); ok {
			fields[k] = err.Error()
		}
	}

	var line []byte
	switch h.format {
	case FormatJSON:
		fields["time"] = r.Time.Format("2006-01-02T15:04:05.000Z07:00")
		fields["level"] = levelString(r.Level)
		fields["msg"] = r.Message
		data, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		line = append(data, '\n')
	case FormatPretty:
		line = h.pretty(r, fields)
	default:
		line = h.compact(r, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

func (h *Handler) compact(r slog.Record, fields map[string]any) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.paint(r.Level, fmt.Sprintf("%5s", levelString(r.Level))))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	if len(fields) > 0 {
		data, err := json.Marshal(fields)
		if err != nil {
			data = []byte(`{"log.error":"unencodable attributes"}`)
		}
		b.WriteByte(' ')
		b.Write(data)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func (h *Handler) pretty(r slog.Record, fields map[string]any) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.paint(r.Level, fmt.Sprintf("%-5s", levelString(r.Level))))
	b.WriteString(" | ")
	b.WriteString(r.Message)
	b.WriteByte('\n')

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s = %v\n", k, fields[k])
	}
	return []byte(b.String())
}

const colorReset = "\033[0m"

func (h *Handler) paint(level slog.Level, s string) string {
	if !h.colors {
		return s
	}
	var color string
	switch {
	case level < slog.LevelDebug:
		color = "\033[90m"
	case level < slog.LevelInfo:
		color = "\033[34m"
	case level < slog.LevelWarn:
		color = "\033[32m"
	case level < slog.LevelError:
		color = "\033[33m"
	default:
		color = "\033[31m"
	}
	return color + s + colorReset
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
