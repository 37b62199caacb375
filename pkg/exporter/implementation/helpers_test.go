package implementation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jt828/go-graphql-tracing/pkg/observability"
	obsImpl "github.com/jt828/go-graphql-tracing/pkg/observability/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testTraceID  = "4bf92f3577b34da6a3ce929d0e0e4736"
	testSpanID   = "00f067aa0ba902b7"
	testParentID = "b7ad6b7169203331"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func childSpan() tracing.SpanData {
	return tracing.SpanData{
		TraceID:      testTraceID,
		SpanID:       testSpanID,
		ParentSpanID: testParentID,
		Name:         "graphql.field Query.getSimple",
		Kind:         tracing.KindInternal,
		StartTime:    testStart,
		EndTime:      testStart.Add(15 * time.Millisecond),
		Attributes: map[string]any{
			"graphql.field": "getSimple",
			"attempt":       int64(2),
		},
	}
}

func rootSpan() tracing.SpanData {
	return tracing.SpanData{
		TraceID:   testTraceID,
		SpanID:    testParentID,
		Name:      "request",
		Kind:      tracing.KindServer,
		StartTime: testStart,
		EndTime:   testStart.Add(40 * time.Millisecond),
		Attributes: map[string]any{
			tracing.AttributeError:        true,
			tracing.AttributeErrorMessage: "upstream timeout",
		},
	}
}

func nopLogger() observability.Logger {
	return obsImpl.NewZapLoggerFrom(zap.NewNop())
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, exporterName string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "exporter" && lp.GetValue() == exporterName {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

type recordingExporter struct {
	name string

	mu       sync.Mutex
	spans    []tracing.SpanData
	calls    int
	failFor  int
	failWith error
	shutdown bool
}

func (e *recordingExporter) Name() string { return e.name }

func (e *recordingExporter) Export(_ context.Context, span tracing.SpanData) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.calls <= e.failFor {
		return e.failWith
	}
	e.spans = append(e.spans, span)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

func (e *recordingExporter) snapshot() ([]tracing.SpanData, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tracing.SpanData(nil), e.spans...), e.calls
}
