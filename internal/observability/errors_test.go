package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecordErrorLogsKindAndRequestID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	span := trace.SpanFromContext(ctx)

	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	counter, err := otel.Meter("test").Int64Counter("test.errors.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	RecordError(
		ctx,
		span,
		logger,
		counter,
		"read_timeout",
		"request failed",
		errors.New("deadline"),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Message != "request failed" {
		t.Fatalf("expected message %q, got %q", "request failed", entry.Message)
	}

	fields := entry.ContextMap()
	if fields["kind"] != "read_timeout" {
		t.Fatalf("expected kind %q, got %#v", "read_timeout", fields["kind"])
	}
	if fields["request_id"] != "req-1" {
		t.Fatalf("expected request_id %q, got %#v", "req-1", fields["request_id"])
	}
	if fields["error"] != "deadline" {
		t.Fatalf("expected error %q, got %#v", "deadline", fields["error"])
	}
}
