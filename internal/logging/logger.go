// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package logging provides the structured logging sink used throughout the
// reconciler: every component logs a severity, a message, and key/value
// context rather than formatted strings, so a run's behavior can be
// filtered and counted mechanically.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured sink every component logs through. It is the
// one external collaborator the core consumes for observability; this
// package is the concrete console implementation.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	// With returns a child Logger that always includes the given key/value
	// pairs, e.g. log.With("instance", name) before a per-instance run.
	With(kv ...any) Logger
}

// zerologLogger adapts zerolog.Logger to the Logger interface.
type zerologLogger struct {
	z zerolog.Logger
}

// New returns a console-friendly Logger writing to w at the given minimum
// level ("debug", "info", "warn", "error"; defaults to "info").
func New(w io.Writer, level string) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	z := zerolog.New(console).With().Timestamp().Logger().Level(parseLevel(level))
	return &zerologLogger{z: z}
}

// NewStdout is a convenience constructor for os.Stdout at info level.
func NewStdout() Logger {
	return New(os.Stdout, "info")
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) event(e *zerolog.Event, msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

func (l *zerologLogger) Debug(msg string, kv ...any) { l.event(l.z.Debug(), msg, kv...) }
func (l *zerologLogger) Info(msg string, kv ...any)  { l.event(l.z.Info(), msg, kv...) }
func (l *zerologLogger) Warn(msg string, kv ...any)  { l.event(l.z.Warn(), msg, kv...) }
func (l *zerologLogger) Error(msg string, kv ...any) { l.event(l.z.Error(), msg, kv...) }

func (l *zerologLogger) With(kv ...any) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return &zerologLogger{z: ctx.Logger()}
}
