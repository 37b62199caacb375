package implementation

import (
	"context"
	"net/http"

	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type observabilityImplementation struct {
	log   observability.Logger
	zap   *zap.Logger
	meter observability.Meter

	metricsAddr   string
	metricsServer *http.Server
}

func (o *observabilityImplementation) Close(ctx context.Context) error {
	var err error
	if o.metricsServer != nil {
		err = multierr.Append(err, o.metricsServer.Shutdown(ctx))
	}
	// stderr sync fails on some platforms; it carries no information.
	_ = o.zap.Sync()
	return err
}

func (o *observabilityImplementation) Logger() observability.Logger { return o.log }
func (o *observabilityImplementation) Meter() observability.Meter   { return o.meter }

func (o *observabilityImplementation) Start(ctx context.Context) error {
	if o.metricsAddr == "" {
		return nil
	}
	if reg := PromRegistry(o.meter); reg != nil {
		o.metricsServer = StartMetricsServer(o.metricsAddr, reg, o.log)
	}
	return nil
}
