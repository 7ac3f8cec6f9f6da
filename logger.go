// Copyright (c) 2026 The simpler-state Authors
//
// logger.go — Logger interface and noop implementation used internally for
// structured diagnostics; swap in zerolog (adapter below), zap, or slog by
// passing a custom implementation to the entity or persistence config.

package simplerstate

import "github.com/rs/zerolog"

// Logger is the logging interface used internally by simpler-state.
// Implement this to route warnings and hook-panic reports anywhere.
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	Debug(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Info(_ string, _ ...any)  {}
func (noopLogger) Warn(_ string, _ ...any)  {}
func (noopLogger) Error(_ string, _ ...any) {}
func (noopLogger) Debug(_ string, _ ...any) {}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger wraps l so it can be used as an entity or persistence
// logger. keysAndValues pairs become structured fields.
func NewZerologLogger(l zerolog.Logger) Logger {
	return zerologLogger{l: l}
}

func (z zerologLogger) Info(msg string, keysAndValues ...any) {
	z.l.Info().Fields(keysAndValues).Msg(msg)
}

func (z zerologLogger) Warn(msg string, keysAndValues ...any) {
	z.l.Warn().Fields(keysAndValues).Msg(msg)
}

func (z zerologLogger) Error(msg string, keysAndValues ...any) {
	z.l.Error().Fields(keysAndValues).Msg(msg)
}

func (z zerologLogger) Debug(msg string, keysAndValues ...any) {
	z.l.Debug().Fields(keysAndValues).Msg(msg)
}
