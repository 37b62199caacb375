package implementation

import "github.com/jt828/go-graphql-tracing/pkg/observability"

type Metrics struct {
	exported observability.Counter
	failed   observability.Counter
	dropped  observability.Counter
	duration observability.Histogram
}

func NewMetrics(meter observability.Meter) *Metrics {
	byExporter := []string{"exporter"}
	return &Metrics{
		exported: meter.Counter("tracing_exported_spans_total", observability.MetricOpt{
			Help:      "Spans delivered to a collector",
			LabelKeys: byExporter,
		}),
		failed: meter.Counter("tracing_export_delivery_failures_total", observability.MetricOpt{
			Help:      "Spans a collector did not accept after retries",
			LabelKeys: byExporter,
		}),
		dropped: meter.Counter("tracing_export_dropped_total", observability.MetricOpt{
			Help:      "Spans dropped because the export queue was full or shut down",
			LabelKeys: byExporter,
		}),
		duration: meter.Histogram("tracing_export_duration_seconds", observability.MetricOpt{
			Help:      "Time spent delivering one span",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			LabelKeys: byExporter,
		}),
	}
}

func exporterLabel(name string) observability.Label {
	return observability.Label{Key: "exporter", Value: name}
}
