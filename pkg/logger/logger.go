package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with a small structured-field API.
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

// Field applies a typed key/value to a zerolog event.
type Field func(e *zerolog.Event) *zerolog.Event

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	tf := cfg.TimeFormat
	if tf == "" {
		tf = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = tf

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: tf}
	}

	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger with a constant component field.
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(l.zl.Error(), msg, fields) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.log(l.zl.Fatal(), msg, fields) }

func (l *Logger) log(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		e = f(e)
	}
	e.Msg(msg)
}

func String(key, value string) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Str(key, value) }
}

func Int(key string, value int) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Int(key, value) }
}

func Float64(key string, value float64) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Float64(key, value) }
}

func Bool(key string, value bool) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Bool(key, value) }
}

func Duration(key string, value time.Duration) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Dur(key, value) }
}

func Strings(key string, value []string) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Strs(key, value) }
}

func Error(err error) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Err(err) }
}

func Any(key string, value interface{}) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Interface(key, value) }
}
