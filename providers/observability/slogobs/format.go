package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatCompact renders one line per record with attributes as a JSON object:
	//  2026-01-02 10:40:35  INFO generate finished {"extract.strategy":"direct"}
	FormatCompact Format = "compact"

	// FormatPretty renders the message on one line and each attribute indented below it.
	FormatPretty Format = "pretty"

	// FormatJSON renders one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

const (
	envLogFormat = "REPLICATOR_LOG_FORMAT"
	envLogLevel  = "REPLICATOR_LOG_LEVEL"
)

// ParseFormat maps a case-insensitive name to a Format, defaulting to compact.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads REPLICATOR_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	if v := os.Getenv(envLogFormat); v != "" {
		return ParseFormat(v)
	}
	return ParseFormat(os.Getenv("LOG_FORMAT"))
}

func (f Format) String() string {
	return string(f)
}

// ParseLevel parses TRACE, DEBUG, INFO, WARN/WARNING or ERROR (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromEnv reads REPLICATOR_LOG_LEVEL, then LOG_LEVEL. Unknown values
// fall back to INFO with a note on stderr.
func LevelFromEnv() slog.Level {
	v := os.Getenv(envLogLevel)
	if v == "" {
		v = os.Getenv("LOG_LEVEL")
	}
	level, err := ParseLevel(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using INFO\n", err)
	}
	return level
}

// levelString returns the name used in rendered output, including TRACE.
func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
