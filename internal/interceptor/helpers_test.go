package interceptor_test

import (
	"context"
	"sync"
	"testing"

	idgenImpl "github.com/jt828/go-graphql-tracing/pkg/idgen/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	obsImpl "github.com/jt828/go-graphql-tracing/pkg/observability/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	tracingImpl "github.com/jt828/go-graphql-tracing/pkg/tracing/implementation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLogger struct {
	errorCalls []struct {
		msg    string
		fields []observability.Field
	}
}

func (m *mockLogger) Debug(msg string, fields ...observability.Field) {}
func (m *mockLogger) Error(msg string, fields ...observability.Field) {
	m.errorCalls = append(m.errorCalls, struct {
		msg    string
		fields []observability.Field
	}{msg, fields})
}
func (m *mockLogger) Fatal(msg string, fields ...observability.Field)         {}
func (m *mockLogger) Info(msg string, fields ...observability.Field)          {}
func (m *mockLogger) Warn(msg string, fields ...observability.Field)          {}
func (m *mockLogger) With(fields ...observability.Field) observability.Logger { return m }

type recordingExporter struct {
	mu    sync.Mutex
	spans []tracing.SpanData
}

func (e *recordingExporter) Name() string { return "recording" }

func (e *recordingExporter) Export(_ context.Context, span tracing.SpanData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, span)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error { return nil }

func (e *recordingExporter) only(t *testing.T) tracing.SpanData {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	require.Len(t, e.spans, 1)
	return e.spans[0]
}

func newRegistry(t *testing.T) (tracing.Registry, *recordingExporter) {
	t.Helper()
	ids, err := idgenImpl.NewGenerator(2)
	require.NoError(t, err)

	exp := &recordingExporter{}
	reg := tracingImpl.NewRegistry(ids, obsImpl.NewZapLoggerFrom(zap.NewNop()), obsImpl.NewPrometheusMeter(),
		tracingImpl.WithExporters(exp))
	return reg, exp
}
