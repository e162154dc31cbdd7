package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "TENANTSHELL_LOG_LEVEL"
	EnvLogNoColor = "TENANTSHELL_LOG_NOCOLOR"
	EnvLogFile    = "TENANTSHELL_LOG_FILE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logger setup. File empty means stderr.
type Config struct {
	Level     zerolog.Level
	NoColor   bool
	Timestamp bool
	File      string
}

// Options are the config-file values layered under the env overrides.
type Options struct {
	Level   string
	NoColor bool
	File    string
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

// Resolve builds the logger config for a profile: defaults, then opts, then env.
func Resolve(profile Profile, opts Options) Config {
	cfg := defaultConfig(profile)
	if lvl, ok := parseLevel(opts.Level); ok {
		cfg.Level = lvl
	}
	cfg.NoColor = cfg.NoColor || opts.NoColor
	if opts.File != "" {
		cfg.File = opts.File
	}
	applyEnvOverrides(&cfg)
	return cfg
}

// New returns the logger for cfg and a closer for its sink.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}
	w := zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor || cfg.File != "", TimeFormat: time.Kitchen}
	if !cfg.Timestamp {
		w.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(w).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger(), closer, nil
}

// ForTest returns a debug logger writing to w.
func ForTest(w io.Writer) zerolog.Logger {
	cfg := Resolve(ProfileTest, Options{})
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).Level(cfg.Level)
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if f := strings.TrimSpace(os.Getenv(EnvLogFile)); f != "" {
		cfg.File = f
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
