package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability/slogobs"
)

const envPrefix = "REPLICATOR"

// config is the resolved command-line configuration.
type config struct {
	Provider ai.Config

	Template    string
	Output      string
	Deploy      bool
	Concurrency int
	RPS         float64
	Timeout     time.Duration
	Repair      bool
	SkipFailed  bool

	LogLevel  slog.Level
	LogFormat slogobs.Format
}

// flag name → viper key
var configKeys = map[string]string{
	"provider":    "provider",
	"api-key":     "api_key",
	"base-url":    "base_url",
	"model":       "model",
	"json-mode":   "json_mode",
	"template":    "template",
	"output":      "output",
	"deploy":      "deploy",
	"concurrency": "concurrency",
	"rps":         "rps",
	"timeout":     "timeout",
	"repair":      "repair",
	"skip-failed": "skip_failed",
	"log-level":   "log_level",
	"log-format":  "log_format",
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("provider", "google", "LLM provider: google, openai or anthropic (env LLM_PROVIDER)")
	flags.String("api-key", "", "API key for the provider (default: GOOGLE_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	flags.String("base-url", "", "base URL for OpenAI-compatible APIs (env OPENAI_BASE_URL)")
	flags.String("model", "", "model name, e.g. gemini-2.0-flash or gpt-4o")
	flags.String("json-mode", "auto", "request native JSON output: auto, true or false")
	flags.String("template", "templates/base-nextjs", "path to the base template")
	flags.String("output", "output", "directory apps are written to")
	flags.Bool("deploy", false, "build and upload the app with pinme")
	flags.Int("concurrency", 1, "files generated at once")
	flags.Float64("rps", 0, "maximum backend requests per second (0 = unlimited)")
	flags.Duration("timeout", 5*time.Minute, "timeout for each backend request (0 = none)")
	flags.Bool("repair", false, "repair malformed JSON replies before validating")
	flags.Bool("skip-failed", false, "leave files empty instead of aborting when generation fails")
	flags.String("log-level", "", "log level: trace, debug, info, warn or error (env REPLICATOR_LOG_LEVEL)")
	flags.String("log-format", "", "log format: compact, pretty or json (env REPLICATOR_LOG_FORMAT)")
}

// newViper binds flags, REPLICATOR_* variables and the optional config file.
// Flags set on the command line win over the environment, which wins over
// the file.
func newViper(flags *pflag.FlagSet, cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	for flag, key := range configKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("provider", envPrefix+"_PROVIDER", "LLM_PROVIDER"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("replicator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// loadDotEnv loads .env from the working directory if present. Variables
// already set are not overridden.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func resolveConfig(v *viper.Viper) (*config, error) {
	kind, err := ai.ParseKind(v.GetString("provider"))
	if err != nil {
		return nil, err
	}

	providerCfg := ai.Config{
		Kind:    kind,
		APIKey:  v.GetString("api_key"),
		BaseURL: v.GetString("base_url"),
		Model:   v.GetString("model"),
	}
	if providerCfg.APIKey == "" {
		providerCfg.APIKey = os.Getenv(kind.EnvKey())
	}
	if providerCfg.BaseURL == "" && kind == ai.KindOpenAI {
		providerCfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	providerCfg.JSONMode, err = parseJSONMode(v.GetString("json_mode"))
	if err != nil {
		return nil, err
	}

	cfg := &config{
		Provider:    providerCfg,
		Template:    v.GetString("template"),
		Output:      v.GetString("output"),
		Deploy:      v.GetBool("deploy"),
		Concurrency: v.GetInt("concurrency"),
		RPS:         v.GetFloat64("rps"),
		Timeout:     v.GetDuration("timeout"),
		Repair:      v.GetBool("repair"),
		SkipFailed:  v.GetBool("skip_failed"),
		LogLevel:    slogobs.LevelFromEnv(),
		LogFormat:   slogobs.FormatFromEnv(),
	}

	if s := v.GetString("log_level"); s != "" {
		if cfg.LogLevel, err = slogobs.ParseLevel(s); err != nil {
			return nil, err
		}
	}
	if s := v.GetString("log_format"); s != "" {
		cfg.LogFormat = slogobs.ParseFormat(s)
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.RPS < 0 {
		return nil, fmt.Errorf("rps must not be negative, got %v", cfg.RPS)
	}
	return cfg, nil
}

func parseJSONMode(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid json-mode %q (expected auto, true or false)", s)
	}
	return &b, nil
}

func newObserver(cfg *config, w io.Writer) *slogobs.Observer {
	return slogobs.New(
		slogobs.WithOutput(w),
		slogobs.WithLevel(cfg.LogLevel),
		slogobs.WithFormat(cfg.LogFormat),
	)
}
