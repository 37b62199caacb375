package implementation

import (
	"context"
	"fmt"
	"sync"

	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/idgen"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"github.com/zoobzio/clockz"
	"go.uber.org/multierr"
)

type Option func(*registry)

func WithClock(clock clockz.Clock) Option {
	return func(r *registry) {
		r.clock = clock
	}
}

func WithExporters(exporters ...exporter.Exporter) Option {
	return func(r *registry) {
		r.exporters = append(r.exporters, exporters...)
	}
}

type registry struct {
	ids   idgen.Generator
	log   observability.Logger
	clock clockz.Clock

	exporters []exporter.Exporter

	mu     sync.Mutex
	open   map[string]*tracing.Span
	closed bool

	started        observability.Counter
	ended          observability.Counter
	openGauge      observability.Gauge
	exportFailures observability.Counter
}

func NewRegistry(
	ids idgen.Generator,
	log observability.Logger,
	meter observability.Meter,
	opts ...Option,
) tracing.Registry {
	r := &registry{
		ids:   ids,
		log:   log,
		clock: clockz.RealClock,
		open:  make(map[string]*tracing.Span),
		started: meter.Counter("tracing_spans_started_total", observability.MetricOpt{
			Help:      "Spans started, by kind",
			LabelKeys: []string{"kind"},
		}),
		ended: meter.Counter("tracing_spans_ended_total", observability.MetricOpt{
			Help:      "Spans ended, by kind",
			LabelKeys: []string{"kind"},
		}),
		openGauge: meter.Gauge("tracing_open_spans", observability.MetricOpt{
			Help: "Spans started and not yet ended",
		}),
		exportFailures: meter.Counter("tracing_export_failures_total", observability.MetricOpt{
			Help:      "Spans an exporter failed to accept",
			LabelKeys: []string{"exporter"},
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *registry) StartSpan(name string, parent *tracing.Span, opts ...tracing.StartOption) *tracing.Span {
	cfg := tracing.ApplyStartOptions(opts...)

	spanCfg := tracing.SpanConfig{
		SpanID:     r.ids.SpanID(),
		Name:       name,
		Kind:       cfg.Kind,
		StartTime:  r.clock.Now(),
		Attributes: cfg.Attributes,
	}
	switch {
	case parent != nil:
		spanCfg.TraceID = parent.TraceID()
		spanCfg.ParentSpanID = parent.SpanID()
	case cfg.RemoteParent.IsValid():
		spanCfg.TraceID = cfg.RemoteParent.TraceID
		spanCfg.ParentSpanID = cfg.RemoteParent.SpanID
	default:
		spanCfg.TraceID = r.ids.TraceID()
	}

	span := tracing.NewSpan(spanCfg)

	r.mu.Lock()
	r.open[span.SpanID()] = span
	n := len(r.open)
	r.mu.Unlock()

	r.started.Inc(1, kindLabel(span.Kind()))
	r.openGauge.Set(float64(n))

	return span
}

func (r *registry) EndSpan(span *tracing.Span) error {
	if span == nil {
		return tracing.ErrNilSpan
	}

	data, err := span.Finish(r.clock.Now())
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.open, span.SpanID())
	n := len(r.open)
	closed := r.closed
	r.mu.Unlock()

	r.ended.Inc(1, kindLabel(span.Kind()))
	r.openGauge.Set(float64(n))

	if closed {
		r.log.Debug("span ended after shutdown, not exported",
			observability.TraceID(data.TraceID), observability.SpanID(data.SpanID))
		return nil
	}

	for _, exp := range r.exporters {
		r.safeExport(exp, data)
	}
	return nil
}

func (r *registry) OpenSpans() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// Shutdown stops exporting and shuts every exporter down. Spans still open
// are left alone; ending them later is allowed but they are not exported.
func (r *registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	open := len(r.open)
	r.mu.Unlock()

	if open > 0 {
		r.log.Warn("shutting down with open spans", observability.Int("open_spans", open))
	}

	var err error
	for _, exp := range r.exporters {
		if e := exp.Shutdown(ctx); e != nil {
			err = multierr.Append(err, fmt.Errorf("exporter %s: %w", exp.Name(), e))
		}
	}
	return err
}

// safeExport isolates one exporter: neither its error nor its panic reaches
// the caller of EndSpan or the other exporters.
func (r *registry) safeExport(exp exporter.Exporter, data tracing.SpanData) {
	defer func() {
		if p := recover(); p != nil {
			r.exportFailed(exp, data, fmt.Errorf("panic: %v", p))
		}
	}()

	if err := exp.Export(context.Background(), data); err != nil {
		r.exportFailed(exp, data, err)
	}
}

func (r *registry) exportFailed(exp exporter.Exporter, data tracing.SpanData, err error) {
	r.exportFailures.Inc(1, observability.Label{Key: "exporter", Value: exp.Name()})
	r.log.Warn("span export failed",
		observability.String("exporter", exp.Name()),
		observability.TraceID(data.TraceID),
		observability.SpanID(data.SpanID),
		observability.Err(err),
	)
}

func kindLabel(kind tracing.SpanKind) observability.Label {
	return observability.Label{Key: "kind", Value: kind.String()}
}
