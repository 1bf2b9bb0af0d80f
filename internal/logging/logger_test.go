package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(New(&buf, "debug", "text"))
	return &buf
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "JSON")

	logger.Info("dropped")
	logger.Warn("kept", "n", 1)

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"n":1`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "parseLevel(%q)", tt.in)
	}
}

func TestFromContext_Scenario(t *testing.T) {
	buf := captureDefault(t)

	ctx := ContextWithScenario(context.Background(), "Login works")
	FromContext(ctx).Info("clicked")

	assert.Contains(t, buf.String(), `scenario="Login works"`)
	assert.Equal(t, "Login works", ScenarioFromContext(ctx))
	assert.Empty(t, ScenarioFromContext(context.Background()))
}

func TestFromContext_RequestID(t *testing.T) {
	buf := captureDefault(t)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	FromContext(ctx).Info("request")

	assert.Contains(t, buf.String(), "request_id=req-42")
}

func TestFacade(t *testing.T) {
	buf := captureDefault(t)
	ctx := context.Background()

	Info(ctx, "info message", "k", 1)
	Debug(ctx, "debug message")
	Warn(ctx, "warn message")
	Error(ctx, "error message", errors.New("boom"))
	Error(ctx, "plain error", nil)

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=\"info message\" k=1")
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "msg=\"plain error\"")
}

func TestWithFields(t *testing.T) {
	buf := captureDefault(t)

	WithFields(context.Background(), "query", "select 1").Info("executing")
	assert.Contains(t, buf.String(), `query="select 1"`)
}
