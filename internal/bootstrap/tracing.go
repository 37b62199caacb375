package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jt828/go-graphql-tracing/internal/config"
	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	cbImpl "github.com/jt828/go-graphql-tracing/pkg/circuitbreaker/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	expImpl "github.com/jt828/go-graphql-tracing/pkg/exporter/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/idgen"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	retryImpl "github.com/jt828/go-graphql-tracing/pkg/retry/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	tracingImpl "github.com/jt828/go-graphql-tracing/pkg/tracing/implementation"
)

// BuildExporters creates one exporter per configured backend. Each is
// wrapped in a breaker and retry, then moved behind an async queue so span
// ends never wait on the network. store may be nil.
func BuildExporters(
	ctx context.Context,
	cfg config.TraceConfig,
	store exporter.SpanStore,
	log observability.Logger,
	meter observability.Meter,
) ([]exporter.Exporter, error) {
	var raw []exporter.Exporter

	if cfg.ZipkinURL != "" {
		raw = append(raw, expImpl.NewZipkinExporter(cfg.ZipkinURL, cfg.ServiceName))
	}
	if cfg.OtlpEndpoint != "" {
		otlp, err := expImpl.NewOtlpExporter(ctx, expImpl.OtlpConfig{
			Endpoint: cfg.OtlpEndpoint,
			Protocol: cfg.OtlpProtocol,
			Insecure: cfg.OtlpInsecure,
		}, cfg.ServiceName)
		if err != nil {
			return nil, shutdownAll(ctx, raw, fmt.Errorf("otlp exporter: %w", err))
		}
		raw = append(raw, otlp)
	}
	if cfg.Stdout {
		stdout, err := expImpl.NewStdoutExporter(ctx, cfg.ServiceName, os.Stdout)
		if err != nil {
			return nil, shutdownAll(ctx, raw, fmt.Errorf("stdout exporter: %w", err))
		}
		raw = append(raw, stdout)
	}
	if store != nil {
		raw = append(raw, expImpl.NewStoreExporter(store))
	}

	metrics := expImpl.NewMetrics(meter)
	exporters := make([]exporter.Exporter, 0, len(raw))
	for _, e := range raw {
		cb := cbImpl.NewCircuitBreaker("exporter-"+e.Name(),
			circuitbreaker.WithMaxFailures(cfg.BreakerFailures),
			circuitbreaker.WithTimeout(cfg.BreakerTimeout),
			circuitbreaker.WithOnStateChange(logStateChange(log)),
		)
		r := retryImpl.NewRetry(cfg.ExportRetries, retry.WithInterval(cfg.ExportRetryInterval))

		guarded := expImpl.NewGuardedExporter(e, cb, r)
		exporters = append(exporters, expImpl.NewAsyncExporter(guarded, cfg.ExportQueueSize, cfg.ExportTimeout, log, metrics))

		log.Info("span exporter enabled", observability.String("exporter", e.Name()))
	}
	return exporters, nil
}

func shutdownAll(ctx context.Context, exporters []exporter.Exporter, cause error) error {
	for _, e := range exporters {
		_ = e.Shutdown(ctx)
	}
	return cause
}

// InitializeTracing builds the span registry with every configured
// exporter attached. Shutting the registry down flushes and closes them.
func InitializeTracing(
	ctx context.Context,
	cfg config.TraceConfig,
	ids idgen.Generator,
	store exporter.SpanStore,
	log observability.Logger,
	meter observability.Meter,
) (tracing.Registry, error) {
	exporters, err := BuildExporters(ctx, cfg, store, log, meter)
	if err != nil {
		return nil, err
	}
	return tracingImpl.NewRegistry(ids, log, meter, tracingImpl.WithExporters(exporters...)), nil
}
