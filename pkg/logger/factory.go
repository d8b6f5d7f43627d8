package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Deployment environments understood by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is read from the environment by pkg/config.
type Config struct {
	Service     string `env:"APP_NAME" envDefault:"clubnotify"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Level       string `env:"LOG_LEVEL"` // overrides the environment preset
}

type options struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// Option configures New.
type Option func(*options)

func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithLevelName parses debug, info, warn or error. Unknown names are ignored.
func WithLevelName(name string) Option {
	return func(o *options) {
		var l slog.Level
		if l.UnmarshalText([]byte(strings.TrimSpace(name))) == nil {
			o.level = l
		}
	}
}

// WithFormat panics on anything but FormatJSON or FormatText; a logger that
// silently writes the wrong format is worse than a failed start.
func WithFormat(f Format) Option {
	if f != FormatJSON && f != FormatText {
		panic(fmt.Sprintf("logger: unknown format %q", f))
	}
	return func(o *options) { o.format = f }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithContextExtractors adds per-record attributes taken from the context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		for _, ex := range extractors {
			if ex != nil {
				o.extractors = append(o.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies the preset of env and tags records with service
// and env. Development logs text at debug level; staging and production log
// JSON at info level.
func WithEnvironment(env, service string) Option {
	return func(o *options) {
		switch strings.ToLower(env) {
		case EnvProduction, "prod":
			o.level, o.format, env = slog.LevelInfo, FormatJSON, EnvProduction
		case EnvStaging, "stage":
			o.level, o.format, env = slog.LevelInfo, FormatJSON, EnvStaging
		default:
			o.level, o.format, env = slog.LevelDebug, FormatText, EnvDevelopment
		}
		if service != "" {
			o.attrs = append(o.attrs, slog.String("service", service))
		}
		o.attrs = append(o.attrs, slog.String("env", env))
	}
}

// FromConfig builds a logger from cfg. opts are applied after the preset.
func FromConfig(cfg Config, opts ...Option) *slog.Logger {
	preset := []Option{WithEnvironment(cfg.Environment, cfg.Service)}
	if cfg.Level != "" {
		preset = append(preset, WithLevelName(cfg.Level))
	}
	return New(append(preset, opts...)...)
}

// New returns a JSON logger at info level on stdout unless opts say otherwise.
func New(opts ...Option) *slog.Logger {
	o := &options{level: slog.LevelInfo, format: FormatJSON, output: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	ho := &slog.HandlerOptions{Level: o.level}
	var h slog.Handler = slog.NewJSONHandler(o.output, ho)
	if o.format == FormatText {
		h = slog.NewTextHandler(o.output, ho)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	return slog.New(withExtractors(h, o.extractors))
}

func SetAsDefault(l *slog.Logger) { slog.SetDefault(l) }

// Discard drops every record.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }
