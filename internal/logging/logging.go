// Package logging wraps github.com/evdnx/golog behind a small interface so
// the rest of the engine does not depend on the concrete logger, the same
// shim the teacher's own logger package uses.
package logging

import (
	"github.com/evdnx/golog"
)

// Field re-exports golog.Field so callers do not import golog directly.
type Field = golog.Field

// Logger is the minimal structured-logging surface used across the engine.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger with the given fields attached to every
	// subsequent call; used to scope a logger to one symbol or chart.
	With(fields ...Field) Logger
}

type gologLogger struct {
	inner *golog.Logger
}

func (l *gologLogger) Debug(msg string, fields ...Field) { l.inner.Debug(msg, fields...) }
func (l *gologLogger) Info(msg string, fields ...Field)  { l.inner.Info(msg, fields...) }
func (l *gologLogger) Warn(msg string, fields ...Field)  { l.inner.Warn(msg, fields...) }
func (l *gologLogger) Error(msg string, fields ...Field) { l.inner.Error(msg, fields...) }

func (l *gologLogger) With(fields ...Field) Logger {
	return &gologLogger{inner: l.inner.With(fields...)}
}

// New creates a production logger wired to golog with JSON output at the
// given level name ("debug", "info", "warn", "error"; defaults to info).
func New(level string) (Logger, error) {
	lvl := golog.InfoLevel
	switch level {
	case "debug":
		lvl = golog.DebugLevel
	case "warn":
		lvl = golog.WarnLevel
	case "error":
		lvl = golog.ErrorLevel
	}
	l, err := golog.NewLogger(
		golog.WithStdOutProvider(golog.JSONEncoder),
		golog.WithLevel(lvl),
	)
	if err != nil {
		return nil, err
	}
	return &gologLogger{inner: l}, nil
}

// Structured field helpers, re-exported for convenience the way the
// teacher's logger package re-exports golog.String/Int/Float64/...
var (
	String   = golog.String
	Int      = golog.Int
	Float64  = golog.Float64
	Bool     = golog.Bool
	Any      = golog.Any
	Err      = golog.Err
	Duration = golog.Duration
)
