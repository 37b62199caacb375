package tracing_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
)

const (
	upstreamTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	upstreamSpanID  = "00f067aa0ba902b7"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		ok      bool
	}{
		{
			name:    "w3c traceparent",
			headers: map[string]string{"traceparent": "00-" + upstreamTraceID + "-" + upstreamSpanID + "-01"},
			ok:      true,
		},
		{
			name: "b3 multiple headers",
			headers: map[string]string{
				"X-B3-TraceId": upstreamTraceID,
				"X-B3-SpanId":  upstreamSpanID,
				"X-B3-Sampled": "1",
			},
			ok: true,
		},
		{
			name:    "b3 single header",
			headers: map[string]string{"b3": upstreamTraceID + "-" + upstreamSpanID + "-1"},
			ok:      true,
		},
		{
			name:    "malformed traceparent",
			headers: map[string]string{"traceparent": "00-zz-yy-01"},
		},
		{
			name: "no headers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}

			sc, ok := tracing.Extract(context.Background(), propagation.HeaderCarrier(h))

			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, upstreamTraceID, sc.TraceID)
			assert.Equal(t, upstreamSpanID, sc.SpanID)
			assert.True(t, sc.Remote)
		})
	}
}

func TestInject(t *testing.T) {
	reg := newRegistry(t)

	t.Run("writes the ambient span", func(t *testing.T) {
		ctx, span := tracing.Start(context.Background(), reg, "client", tracing.WithKind(tracing.KindClient))
		h := http.Header{}

		tracing.Inject(ctx, propagation.HeaderCarrier(h))

		assert.Equal(t, "00-"+span.TraceID()+"-"+span.SpanID()+"-01", h.Get("traceparent"))
		assert.Equal(t, span.TraceID(), h.Get("X-B3-TraceId"))

		sc, ok := tracing.Extract(context.Background(), propagation.HeaderCarrier(h))
		require.True(t, ok)
		assert.Equal(t, span.Context().TraceID, sc.TraceID)
		assert.Equal(t, span.Context().SpanID, sc.SpanID)
	})

	t.Run("writes nothing outside a scope", func(t *testing.T) {
		h := http.Header{}
		tracing.Inject(context.Background(), propagation.HeaderCarrier(h))
		assert.Empty(t, h)
	})
}

func TestSpanContext_OtelSpanContext(t *testing.T) {
	sc, err := tracing.SpanContext{TraceID: upstreamTraceID, SpanID: upstreamSpanID}.OtelSpanContext()
	require.NoError(t, err)
	assert.True(t, sc.IsSampled())
	assert.Equal(t, upstreamTraceID, sc.TraceID().String())

	_, err = tracing.SpanContext{TraceID: "short", SpanID: upstreamSpanID}.OtelSpanContext()
	assert.Error(t, err)
}
