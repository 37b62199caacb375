package exporter

import (
	"context"
	"errors"

	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

var (
	// ErrQueueFull is returned when an asynchronous exporter has no room left
	// for another span. The span is dropped.
	ErrQueueFull = errors.New("exporter: queue full")

	ErrExporterClosed = errors.New("exporter: closed")
)

// Exporter delivers finished spans to a collector. Implementations must be
// safe for concurrent use.
type Exporter interface {
	Name() string
	Export(ctx context.Context, span tracing.SpanData) error
	Shutdown(ctx context.Context) error
}

// SpanStore persists finished spans.
type SpanStore interface {
	Save(ctx context.Context, span tracing.SpanData) error
}
