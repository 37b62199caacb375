// Package tracing carries request-scoped trace identity through a request
// pipeline.
//
// A Span is one timed unit of work. A Carrier is an immutable snapshot of the
// span that is active at some point of the call graph; entering a nested
// scope wraps a new span in a new Carrier that points back at the previous
// one. Carriers travel inside context.Context, so the ambient span of a
// goroutine is whatever its context says it is:
//
//	span := registry.StartSpan("request", nil, tracing.WithKind(tracing.KindServer))
//	defer registry.EndSpan(span)
//
//	err := tracing.Run(ctx, tracing.WithValue(tracing.CarrierFromContext(ctx), span),
//		func(ctx context.Context) error {
//			traceID, _ := tracing.CurrentTraceID(ctx)
//			...
//		})
//
// There is no process-wide "current span". Concurrent requests each own their
// context chain and can never observe each other's carrier; leaving a scope
// needs no cleanup because the caller's context was never modified.
package tracing
