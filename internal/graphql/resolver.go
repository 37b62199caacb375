package graphql

import (
	"context"
	"time"

	"github.com/jt828/go-graphql-tracing/internal/service"
	"github.com/jt828/go-graphql-tracing/pkg/model"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

type Resolver struct {
	traces service.TraceService
	log    observability.Logger
}

func NewResolver(traces service.TraceService, log observability.Logger) *Resolver {
	return &Resolver{traces: traces, log: log}
}

// GetSimple answers with static values and the identifiers of the span the
// resolver runs under.
func (r *Resolver) GetSimple(ctx context.Context) *ResponseResolver {
	res := &ResponseResolver{foo: "I am foo!", bar: "I am bar!"}
	if id, ok := tracing.CurrentTraceID(ctx); ok {
		res.traceID = &id
	}
	if id, ok := tracing.CurrentSpanID(ctx); ok {
		res.spanID = &id
	}

	observability.WithTrace(ctx, r.log).Info("resolving getSimple")
	return res
}

func (r *Resolver) Trace(ctx context.Context, args struct{ ID string }) ([]*SpanResolver, error) {
	spans, err := r.traces.GetTrace(ctx, args.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*SpanResolver, 0, len(spans))
	for _, s := range spans {
		out = append(out, &SpanResolver{span: s})
	}
	return out, nil
}

type ResponseResolver struct {
	foo     string
	bar     string
	traceID *string
	spanID  *string
}

func (r *ResponseResolver) Foo() *string     { return &r.foo }
func (r *ResponseResolver) Bar() *string     { return &r.bar }
func (r *ResponseResolver) TraceId() *string { return r.traceID }
func (r *ResponseResolver) SpanId() *string  { return r.spanID }

type SpanResolver struct {
	span *model.Span
}

func (r *SpanResolver) TraceId() string { return r.span.TraceId }
func (r *SpanResolver) SpanId() string  { return r.span.SpanId }
func (r *SpanResolver) Name() string    { return r.span.Name }
func (r *SpanResolver) Kind() string    { return r.span.Kind }

func (r *SpanResolver) ParentSpanId() *string {
	if r.span.ParentSpanId == "" {
		return nil
	}
	return &r.span.ParentSpanId
}

func (r *SpanResolver) StartTime() string {
	return r.span.StartTime.UTC().Format(time.RFC3339Nano)
}

func (r *SpanResolver) EndTime() string {
	return r.span.EndTime.UTC().Format(time.RFC3339Nano)
}

func (r *SpanResolver) DurationMs() float64 {
	return float64(r.span.Duration) / float64(time.Millisecond)
}

func (r *SpanResolver) Attributes() []*AttributeResolver {
	out := make([]*AttributeResolver, 0, len(r.span.Attributes))
	for _, a := range r.span.Attributes {
		out = append(out, &AttributeResolver{key: a.Key, value: a.Value})
	}
	return out
}

type AttributeResolver struct {
	key   string
	value string
}

func (r *AttributeResolver) Key() string   { return r.key }
func (r *AttributeResolver) Value() string { return r.value }
