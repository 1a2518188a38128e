// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/shadowsmith/internal/env"
	"github.com/ekisa-team/shadowsmith/internal/envvar"
)

type options struct {
	level     slog.Level
	logToFile bool
	logFile   string
	out       io.Writer
}

// Option configures New.
type Option func(*options)

// WithLogToFile tees log records into a rotating log file.
func WithLogToFile(enabled bool) Option {
	return func(o *options) {
		o.logToFile = enabled
	}
}

// WithLogFile sets the rotating log file path.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput replaces stderr as the console destination.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// New returns a logger for the environment: colored console output in
// development, JSON in production. SHADOWSMITH_LOG_LEVEL overrides the level.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := options{
		level:   slog.LevelInfo,
		logFile: "logs/shadowsmith.log",
		out:     os.Stderr,
	}
	if environment == env.Development {
		o.level = slog.LevelDebug
	}
	for _, opt := range opts {
		opt(&o)
	}
	if lvl, ok := levelFromEnv(); ok {
		o.level = lvl
	}

	var handler slog.Handler
	if environment.IsProduction() {
		handler = slog.NewJSONHandler(o.out, &slog.HandlerOptions{Level: o.level})
	} else {
		handler = tint.NewHandler(o.out, &tint.Options{
			Level:      o.level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(o.out),
		})
	}

	if o.logToFile {
		file := &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		handler = fanout{handler, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: o.level})}
	}

	return slog.New(handler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func levelFromEnv() (slog.Level, bool) {
	s := strings.TrimSpace(os.Getenv(envvar.ShadowsmithLogLevel))
	if s == "" {
		return 0, false
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, false
	}
	return lvl, true
}
