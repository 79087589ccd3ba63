package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newBufferedLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	baseHandler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{baseHandler: baseHandler}), &buf
}

func startTestSpan(t *testing.T) context.Context {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(nil) })

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-span")
	t.Cleanup(func() { span.End() })

	return ctx
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTraceAndSpanIDInclusion(t *testing.T) {
	logger, buf := newBufferedLogger(slog.LevelInfo)
	ctx := startTestSpan(t)

	logger.InfoContext(ctx, "test message", "key", "value")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if traceID, ok := logEntry["trace_id"].(string); !ok || traceID == "" {
		t.Error("expected trace_id to be present and non-empty")
	}
	if spanID, ok := logEntry["span_id"].(string); !ok || spanID == "" {
		t.Error("expected span_id to be present and non-empty")
	}
	if logEntry["msg"] != "test message" {
		t.Errorf("expected msg to be 'test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("expected key to be 'value', got %v", logEntry["key"])
	}
}

func TestLogWithoutTraceIDs(t *testing.T) {
	logger, buf := newBufferedLogger(slog.LevelInfo)

	logger.InfoContext(context.Background(), "test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if _, exists := logEntry["trace_id"]; exists {
		t.Error("expected trace_id to not be present")
	}
	if _, exists := logEntry["span_id"]; exists {
		t.Error("expected span_id to not be present")
	}
}

func TestRespectLogLevel(t *testing.T) {
	logger, buf := newBufferedLogger(slog.LevelWarn)
	ctx := context.Background()

	logger.InfoContext(ctx, "info message")
	if buf.Len() > 0 {
		t.Error("expected info message to be filtered out")
	}

	logger.WarnContext(ctx, "warn message")
	if buf.Len() == 0 {
		t.Error("expected warn message to be logged")
	}
}

func TestTraceIDsStayAtRootWithGroups(t *testing.T) {
	logger, buf := newBufferedLogger(slog.LevelInfo)
	ctx := startTestSpan(t)

	logger.WithGroup("http").InfoContext(ctx, "request", "method", "GET", "path", "/orders")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if _, ok := logEntry["trace_id"].(string); !ok {
		t.Error("expected trace_id to be present at root level")
	}

	httpGroup, ok := logEntry["http"].(map[string]interface{})
	if !ok {
		t.Fatal("expected http group to be present")
	}
	if httpGroup["method"] != "GET" {
		t.Errorf("expected method to be 'GET', got %v", httpGroup["method"])
	}
	if _, exists := httpGroup["trace_id"]; exists {
		t.Error("trace_id should stay at the root level, not inside the group")
	}
}

func TestLogWithChainedAttributes(t *testing.T) {
	logger, buf := newBufferedLogger(slog.LevelInfo)
	ctx := startTestSpan(t)

	logger.With("attr1", "value1").With("attr2", "value2").InfoContext(ctx, "test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["attr1"] != "value1" {
		t.Errorf("expected attr1 to be 'value1', got %v", logEntry["attr1"])
	}
	if logEntry["attr2"] != "value2" {
		t.Errorf("expected attr2 to be 'value2', got %v", logEntry["attr2"])
	}
	if _, ok := logEntry["trace_id"].(string); !ok {
		t.Error("expected trace_id to be present")
	}
}
