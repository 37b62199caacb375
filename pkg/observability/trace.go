package observability

import (
	"context"

	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

// WithTrace returns log annotated with the ambient trace and span ids of
// ctx. Outside of a traced scope log is returned as is.
func WithTrace(ctx context.Context, log Logger) Logger {
	span, ok := tracing.CurrentSpan(ctx)
	if !ok {
		return log
	}
	return log.With(TraceID(span.TraceID()), SpanID(span.SpanID()))
}
