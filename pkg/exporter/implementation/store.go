package implementation

import (
	"context"

	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

const StoreExporterName = "store"

type storeExporter struct {
	store exporter.SpanStore
}

func NewStoreExporter(store exporter.SpanStore) exporter.Exporter {
	return &storeExporter{store: store}
}

func (e *storeExporter) Name() string { return StoreExporterName }

func (e *storeExporter) Export(ctx context.Context, span tracing.SpanData) error {
	return e.store.Save(ctx, span)
}

func (e *storeExporter) Shutdown(context.Context) error { return nil }
