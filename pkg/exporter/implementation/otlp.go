package implementation

import (
	"context"
	"fmt"
	"io"

	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	OtlpExporterName   = "otlp"
	StdoutExporterName = "stdout"

	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"

	instrumentationName = "github.com/jt828/go-graphql-tracing"
)

type OtlpConfig struct {
	Endpoint string
	Protocol string
	Insecure bool
}

// NewOtlpExporter ships spans to an OTLP collector such as Jaeger.
func NewOtlpExporter(ctx context.Context, cfg OtlpConfig, serviceName string) (exporter.Exporter, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch cfg.Protocol {
	case ProtocolGRPC, "":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err = otlptracegrpc.New(ctx, opts...)
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err = otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", cfg.Protocol)
	}
	if err != nil {
		return nil, err
	}

	return NewSpanExporterAdapter(ctx, OtlpExporterName, serviceName, exp)
}

// NewStdoutExporter pretty-prints spans to w.
func NewStdoutExporter(ctx context.Context, serviceName string, w io.Writer) (exporter.Exporter, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return NewSpanExporterAdapter(ctx, StdoutExporterName, serviceName, exp)
}

type spanExporterAdapter struct {
	name     string
	exporter sdktrace.SpanExporter
	resource *resource.Resource
}

// NewSpanExporterAdapter feeds finished spans to any OpenTelemetry SDK span
// exporter without going through the SDK's tracer provider.
func NewSpanExporterAdapter(
	ctx context.Context,
	name string,
	serviceName string,
	exp sdktrace.SpanExporter,
) (exporter.Exporter, error) {
	res, err := resource.New(
		ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	return &spanExporterAdapter{
		name:     name,
		exporter: exp,
		resource: res,
	}, nil
}

func (a *spanExporterAdapter) Name() string { return a.name }

func (a *spanExporterAdapter) Export(ctx context.Context, span tracing.SpanData) error {
	ro, err := a.toReadOnlySpan(span)
	if err != nil {
		return err
	}
	return a.exporter.ExportSpans(ctx, []sdktrace.ReadOnlySpan{ro})
}

func (a *spanExporterAdapter) Shutdown(ctx context.Context) error {
	return a.exporter.Shutdown(ctx)
}

func (a *spanExporterAdapter) toReadOnlySpan(span tracing.SpanData) (sdktrace.ReadOnlySpan, error) {
	sc, err := span.Context().OtelSpanContext()
	if err != nil {
		return nil, err
	}

	stub := tracetest.SpanStub{
		Name:                 span.Name,
		SpanContext:          sc,
		SpanKind:             otelKind(span.Kind),
		StartTime:            span.StartTime,
		EndTime:              span.EndTime,
		Attributes:           otelAttributes(span.Attributes),
		Resource:             a.resource,
		InstrumentationScope: instrumentation.Scope{Name: instrumentationName},
	}
	if !span.IsRoot() {
		parent, err := tracing.SpanContext{TraceID: span.TraceID, SpanID: span.ParentSpanID}.OtelSpanContext()
		if err != nil {
			return nil, err
		}
		stub.Parent = parent
	}
	if msg, failed := span.Failed(); failed {
		stub.Status = sdktrace.Status{Code: codes.Error, Description: msg}
	}

	return stub.Snapshot(), nil
}

func otelKind(kind tracing.SpanKind) trace.SpanKind {
	switch kind {
	case tracing.KindServer:
		return trace.SpanKindServer
	case tracing.KindClient:
		return trace.SpanKindClient
	default:
		return trace.SpanKindInternal
	}
}

func otelAttributes(attrs map[string]any) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			out = append(out, attribute.String(k, val))
		case bool:
			out = append(out, attribute.Bool(k, val))
		case int64:
			out = append(out, attribute.Int64(k, val))
		case float64:
			out = append(out, attribute.Float64(k, val))
		default:
			out = append(out, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return out
}
