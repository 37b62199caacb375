package implementation

import (
	"context"
	"fmt"
	"sync"
	"time"

	cbImpl "github.com/jt828/go-graphql-tracing/pkg/circuitbreaker/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"go.uber.org/multierr"
)

const (
	DefaultQueueSize     = 1024
	DefaultExportTimeout = 5 * time.Second
)

type asyncExporter struct {
	next    exporter.Exporter
	log     observability.Logger
	metrics *Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan tracing.SpanData

	stop chan struct{}
	done chan struct{}
}

// NewAsyncExporter moves delivery off the caller's goroutine. Export only
// enqueues; one worker delivers spans to next in order, each within timeout.
func NewAsyncExporter(
	next exporter.Exporter,
	queueSize int,
	timeout time.Duration,
	log observability.Logger,
	metrics *Metrics,
) exporter.Exporter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultExportTimeout
	}

	a := &asyncExporter{
		next:    next,
		log:     log.With(observability.String("exporter", next.Name())),
		metrics: metrics,
		timeout: timeout,
		queue:   make(chan tracing.SpanData, queueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *asyncExporter) Name() string { return a.next.Name() }

// Export never blocks. A full queue drops the span.
func (a *asyncExporter) Export(_ context.Context, span tracing.SpanData) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return exporter.ErrExporterClosed
	}

	select {
	case a.queue <- span:
		return nil
	default:
		a.metrics.dropped.Inc(1, exporterLabel(a.Name()))
		return exporter.ErrQueueFull
	}
}

// Shutdown stops accepting spans, delivers what is queued until ctx is done,
// then shuts the wrapped exporter down.
func (a *asyncExporter) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return exporter.ErrExporterClosed
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	var err error
	select {
	case <-a.done:
	case <-ctx.Done():
		close(a.stop)
		<-a.done
		err = fmt.Errorf("drain %s: %w", a.Name(), ctx.Err())
	}

	return multierr.Append(err, a.next.Shutdown(ctx))
}

func (a *asyncExporter) run() {
	defer close(a.done)

	for span := range a.queue {
		select {
		case <-a.stop:
			a.metrics.dropped.Inc(float64(1+len(a.queue)), exporterLabel(a.Name()))
			return
		default:
		}
		a.deliver(span)
	}
}

func (a *asyncExporter) deliver(span tracing.SpanData) {
	label := exporterLabel(a.Name())
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err := a.safeExport(ctx, span)
	a.metrics.duration.Observe(time.Since(start).Seconds(), label)

	if err == nil {
		a.metrics.exported.Inc(1, label)
		return
	}

	a.metrics.failed.Inc(1, label)
	fields := []observability.Field{
		observability.TraceID(span.TraceID),
		observability.SpanID(span.SpanID),
		observability.Err(err),
	}
	if cbImpl.IsRejected(err) {
		a.log.Debug("span export skipped, circuit open", fields...)
		return
	}
	a.log.Warn("span export failed", fields...)
}

func (a *asyncExporter) safeExport(ctx context.Context, span tracing.SpanData) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return a.next.Export(ctx, span)
}
