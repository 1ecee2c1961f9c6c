// Package logging configures the zerolog logger shared across the service.
package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger for the given service name. level is a zerolog
// level string ("debug", "info", ...); unknown values fall back to info.
// When pretty is set the output is human formatted for local development,
// otherwise it is one JSON object per line.
func New(service, level string, pretty bool) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(parsed).With().
		Timestamp().
		Str("service", service).
		Logger()
}

type contextKey struct{}

// ContextWithLogger returns a derived context carrying the logger, typically
// enriched with per-request fields by the HTTP middleware.
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger attached to the context, or a disabled
// logger when none was attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}
