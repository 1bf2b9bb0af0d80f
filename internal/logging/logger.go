// Package logging provides structured logging configuration using log/slog.
//
// Loggers obtained through FromContext carry the chi request id for stub
// server requests and the name of the running test scenario, so every line a
// wrapper emits can be tied back to the step that produced it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const ctxKeyScenario contextKey = "scenario"

// Setup configures the global slog logger to write to stderr, leaving
// stdout to command output.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New builds a logger writing to w with the given level and format.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithScenario records the running scenario name for log enrichment.
func ContextWithScenario(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKeyScenario, name)
}

// ScenarioFromContext returns the scenario name stored by ContextWithScenario.
func ScenarioFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyScenario).(string); ok {
		return v
	}
	return ""
}

// FromContext returns a logger enriched with request and scenario context.
//
// Usage:
//
//	func (s *steps) iOpenTheLoginPage(ctx context.Context) error {
//	    logger := logging.FromContext(ctx)
//	    logger.Info("opening login page", "url", s.baseURL)
//	    ...
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if ctx == nil {
		return logger
	}

	// Chi's RequestID middleware stores the ID in context
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if name := ScenarioFromContext(ctx); name != "" {
		logger = logger.With("scenario", name)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
