package implementation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"github.com/openzipkin/zipkin-go/model"
	"github.com/openzipkin/zipkin-go/reporter"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
)

const ZipkinExporterName = "zipkin"

type zipkinExporter struct {
	reporter reporter.Reporter
	endpoint *model.Endpoint
}

// NewZipkinExporter reports spans to the Zipkin v2 HTTP API at url, e.g.
// http://localhost:9411/api/v2/spans.
func NewZipkinExporter(url, serviceName string, opts ...zipkinhttp.ReporterOption) exporter.Exporter {
	return NewZipkinExporterWithReporter(zipkinhttp.NewReporter(url, opts...), serviceName)
}

func NewZipkinExporterWithReporter(r reporter.Reporter, serviceName string) exporter.Exporter {
	return &zipkinExporter{
		reporter: r,
		endpoint: &model.Endpoint{ServiceName: serviceName},
	}
}

func (e *zipkinExporter) Name() string { return ZipkinExporterName }

func (e *zipkinExporter) Export(_ context.Context, span tracing.SpanData) error {
	m, err := e.toModel(span)
	if err != nil {
		return err
	}
	e.reporter.Send(m)
	return nil
}

// Shutdown flushes buffered spans. The reporter has no deadline of its own.
func (e *zipkinExporter) Shutdown(context.Context) error {
	return e.reporter.Close()
}

func (e *zipkinExporter) toModel(span tracing.SpanData) (model.SpanModel, error) {
	traceID, err := model.TraceIDFromHex(span.TraceID)
	if err != nil {
		return model.SpanModel{}, fmt.Errorf("zipkin trace id %q: %w", span.TraceID, err)
	}
	spanID, err := parseZipkinID(span.SpanID)
	if err != nil {
		return model.SpanModel{}, err
	}

	sampled := true
	m := model.SpanModel{
		SpanContext: model.SpanContext{
			TraceID: traceID,
			ID:      spanID,
			Sampled: &sampled,
		},
		Name:          span.Name,
		Kind:          zipkinKind(span.Kind),
		Timestamp:     span.StartTime,
		Duration:      span.Duration(),
		LocalEndpoint: e.endpoint,
		Tags:          zipkinTags(span.Attributes),
	}
	if !span.IsRoot() {
		parentID, err := parseZipkinID(span.ParentSpanID)
		if err != nil {
			return model.SpanModel{}, err
		}
		m.ParentID = &parentID
	}
	return m, nil
}

func parseZipkinID(hex string) (model.ID, error) {
	id, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("zipkin span id %q: %w", hex, err)
	}
	return model.ID(id), nil
}

func zipkinKind(kind tracing.SpanKind) model.Kind {
	switch kind {
	case tracing.KindServer:
		return model.Server
	case tracing.KindClient:
		return model.Client
	default:
		return model.Undetermined
	}
}

// zipkinTags flattens attributes into string tags. Zipkin marks a span as
// failed through the "error" tag, whose value is the error message.
func zipkinTags(attrs map[string]any) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	tags := make(map[string]string, len(attrs))
	for k, v := range attrs {
		tags[k] = fmt.Sprint(v)
	}
	if failed, _ := attrs[tracing.AttributeError].(bool); failed {
		msg, _ := attrs[tracing.AttributeErrorMessage].(string)
		if msg == "" {
			msg = "true"
		}
		tags[tracing.AttributeError] = msg
		delete(tags, tracing.AttributeErrorMessage)
	}
	return tags
}
