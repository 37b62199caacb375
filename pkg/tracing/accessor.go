package tracing

import "context"

// CurrentSpan returns the ambient span of ctx. It never creates one.
func CurrentSpan(ctx context.Context) (*Span, bool) {
	span, err := CarrierFromContext(ctx).Current()
	if err != nil {
		return nil, false
	}
	return span, true
}

// CurrentTraceID returns the trace id of the ambient span, or false outside
// of any scope.
func CurrentTraceID(ctx context.Context) (string, bool) {
	span, ok := CurrentSpan(ctx)
	if !ok {
		return "", false
	}
	return span.TraceID(), true
}

// CurrentSpanID returns the span id of the ambient span, or false outside of
// any scope.
func CurrentSpanID(ctx context.Context) (string, bool) {
	span, ok := CurrentSpan(ctx)
	if !ok {
		return "", false
	}
	return span.SpanID(), true
}
