package graphql

import (
	"context"
	"errors"
	"strings"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/graph-gophers/graphql-go/introspection"
	"github.com/graph-gophers/graphql-go/trace/tracer"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

const (
	QuerySpan      = "graphql.query"
	ValidationSpan = "graphql.validation"
	FieldSpan      = "graphql.field"

	AttributeDocument  = "graphql.document"
	AttributeOperation = "graphql.operation.name"
	AttributeFieldType = "graphql.field.type"
	AttributeFieldName = "graphql.field.name"
)

var (
	_ tracer.Tracer           = (*Tracer)(nil)
	_ tracer.ValidationTracer = (*Tracer)(nil)
)

// Tracer opens child spans of the ambient span for each phase of a GraphQL
// execution. The context handed back to the engine carries the new span, so
// a resolver's ambient span is its own field span.
type Tracer struct {
	reg          tracing.Registry
	log          observability.Logger
	traceTrivial bool
}

func NewTracer(reg tracing.Registry, log observability.Logger, traceTrivialFields bool) *Tracer {
	return &Tracer{reg: reg, log: log, traceTrivial: traceTrivialFields}
}

func (t *Tracer) TraceQuery(
	ctx context.Context,
	queryString string,
	operationName string,
	_ map[string]interface{},
	_ map[string]*introspection.Type,
) (context.Context, tracer.QueryFinishFunc) {
	attrs := map[string]any{AttributeDocument: queryString}
	if operationName != "" {
		attrs[AttributeOperation] = operationName
	}

	ctx, span := tracing.Start(ctx, t.reg, QuerySpan, tracing.WithAttributes(attrs))
	return ctx, func(errs []*gqlerrors.QueryError) {
		span.RecordError(joinQueryErrors(errs))
		t.end(span)
	}
}

func (t *Tracer) TraceField(
	ctx context.Context,
	_ string,
	typeName string,
	fieldName string,
	trivial bool,
	_ map[string]interface{},
) (context.Context, tracer.FieldFinishFunc) {
	if trivial && !t.traceTrivial {
		return ctx, func(*gqlerrors.QueryError) {}
	}

	ctx, span := tracing.Start(ctx, t.reg, FieldSpan+" "+typeName+"."+fieldName, tracing.WithAttributes(map[string]any{
		AttributeFieldType: typeName,
		AttributeFieldName: fieldName,
	}))
	return ctx, func(err *gqlerrors.QueryError) {
		if err != nil {
			span.RecordError(err)
		}
		t.end(span)
	}
}

func (t *Tracer) TraceValidation(ctx context.Context) tracer.ValidationFinishFunc {
	_, span := tracing.Start(ctx, t.reg, ValidationSpan)
	return func(errs []*gqlerrors.QueryError) {
		span.RecordError(joinQueryErrors(errs))
		t.end(span)
	}
}

func (t *Tracer) end(span *tracing.Span) {
	if err := t.reg.EndSpan(span); err != nil {
		t.log.Warn("failed to end graphql span", observability.Err(err), observability.TraceID(span.TraceID()))
	}
}

func joinQueryErrors(errs []*gqlerrors.QueryError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}
