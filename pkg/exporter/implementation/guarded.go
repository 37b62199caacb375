package implementation

import (
	"context"

	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

type guardedExporter struct {
	next  exporter.Exporter
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
}

// NewGuardedExporter retries failed exports and stops calling next while
// the breaker is open, so a dead collector fails fast.
func NewGuardedExporter(next exporter.Exporter, cb circuitbreaker.CircuitBreaker, r retry.Retry) exporter.Exporter {
	return &guardedExporter{next: next, cb: cb, retry: r}
}

func (g *guardedExporter) Name() string { return g.next.Name() }

func (g *guardedExporter) Export(ctx context.Context, span tracing.SpanData) error {
	_, err := g.cb.Execute(func() (any, error) {
		return nil, g.retry.Execute(ctx, func(ctx context.Context) error {
			return g.next.Export(ctx, span)
		})
	})
	return err
}

func (g *guardedExporter) Shutdown(ctx context.Context) error {
	return g.next.Shutdown(ctx)
}
