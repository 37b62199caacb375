package implementation_test

import (
	"testing"

	"github.com/jt828/go-graphql-tracing/pkg/observability"
	obsImpl "github.com/jt828/go-graphql-tracing/pkg/observability/implementation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMeter(t *testing.T) {
	t.Run("labelled counter", func(t *testing.T) {
		meter := obsImpl.NewPrometheusMeter()
		c := meter.Counter("spans_total", observability.MetricOpt{Help: "spans", LabelKeys: []string{"kind"}})

		c.Inc(2, observability.Label{Key: "kind", Value: "server"})
		c.Inc(1, observability.Label{Key: "kind", Value: "internal"})

		reg := obsImpl.PromRegistry(meter)
		require.NotNil(t, reg)
		n, err := testutil.GatherAndCount(reg, "spans_total")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("asking twice for one metric shares the series", func(t *testing.T) {
		meter := obsImpl.NewPrometheusMeter()
		opt := observability.MetricOpt{Help: "open", LabelKeys: []string{"exporter"}}

		meter.Counter("dropped_total", opt).Inc(1, observability.Label{Key: "exporter", Value: "zipkin"})
		require.NotPanics(t, func() {
			meter.Counter("dropped_total", opt).Inc(1, observability.Label{Key: "exporter", Value: "zipkin"})
		})

		families, err := obsImpl.PromRegistry(meter).Gather()
		require.NoError(t, err)
		for _, mf := range families {
			if mf.GetName() == "dropped_total" {
				require.Len(t, mf.GetMetric(), 1)
				assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
				return
			}
		}
		t.Fatal("dropped_total not gathered")
	})

	t.Run("gauge and timer", func(t *testing.T) {
		meter := obsImpl.NewPrometheusMeter()
		g := meter.Gauge("open_spans", observability.MetricOpt{Help: "open"})
		g.Set(3)
		g.Add(-1)

		stop := meter.Timer("export_seconds", observability.MetricOpt{Help: "export", LabelKeys: []string{"exporter"}}).
			Start(observability.Label{Key: "exporter", Value: "otlp"})
		stop()

		reg := obsImpl.PromRegistry(meter)
		n, err := testutil.GatherAndCount(reg, "open_spans", "export_seconds")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("foreign meters have no registry", func(t *testing.T) {
		assert.Nil(t, obsImpl.PromRegistry(nil))
	})
}
