package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)),
)

// Extract reads an upstream span identity from W3C traceparent or B3
// headers.
func Extract(ctx context.Context, carrier propagation.TextMapCarrier) (SpanContext, bool) {
	sc := trace.SpanContextFromContext(propagator.Extract(ctx, carrier))
	if !sc.IsValid() {
		return SpanContext{}, false
	}
	return SpanContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
		Remote:  true,
	}, true
}

// Inject writes the ambient span identity of ctx as W3C traceparent and B3
// headers. Nothing is written outside of a scope.
func Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	span, ok := CurrentSpan(ctx)
	if !ok {
		return
	}
	sc, err := span.Context().OtelSpanContext()
	if err != nil {
		return
	}
	propagator.Inject(trace.ContextWithSpanContext(ctx, sc), carrier)
}

// OtelSpanContext converts the identity to its OpenTelemetry form. Both ids
// must be lowercase hex of the W3C lengths.
func (sc SpanContext) OtelSpanContext() (trace.SpanContext, error) {
	traceID, err := trace.TraceIDFromHex(sc.TraceID)
	if err != nil {
		return trace.SpanContext{}, fmt.Errorf("trace id %q: %w", sc.TraceID, err)
	}
	spanID, err := trace.SpanIDFromHex(sc.SpanID)
	if err != nil {
		return trace.SpanContext{}, fmt.Errorf("span id %q: %w", sc.SpanID, err)
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     sc.Remote,
	}), nil
}
