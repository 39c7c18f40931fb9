package report

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wippyai/faultkit/taxonomy"
)

const defaultTracerName = "github.com/wippyai/faultkit"

// TracingOption configures the tracing reporter.
type TracingOption func(*tracingReporter)

// WithTracerName sets the tracer used when ctx carries no recording span.
func WithTracerName(name string) TracingOption {
	return func(t *tracingReporter) {
		t.tracerName = name
	}
}

type tracingReporter struct {
	tracerName string
}

// Tracing records failures on the span carried by ctx. When ctx has no
// recording span, a short "failure" span is started from the global
// tracer provider.
func Tracing(opts ...TracingOption) Reporter {
	t := &tracingReporter{tracerName: defaultTracerName}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *tracingReporter) Report(ctx context.Context, rec taxonomy.Record) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		_, span = otel.Tracer(t.tracerName).Start(ctx, "failure")
		defer span.End()
	}

	attrs := []attribute.KeyValue{
		attribute.String("failure.id", rec.ID()),
		attribute.String("failure.kind", string(rec.Kind())),
		attribute.Bool("failure.tagged", rec.Tagged()),
		attribute.Bool("failure.panicked", rec.Panicked()),
	}
	span.SetAttributes(attrs...)
	span.RecordError(rec.Err(), trace.WithAttributes(attrs[1]))
	span.SetStatus(codes.Error, rec.Message())
}
