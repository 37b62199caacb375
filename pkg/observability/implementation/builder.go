package implementation

import (
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"go.uber.org/zap"
)

type Config struct {
	ServiceName string
	MetricsAddr string
}

func NewObservability(cfg Config) (observability.Observability, error) {
	l, err := zap.NewProduction(zap.Fields(zap.String("service", cfg.ServiceName)))
	if err != nil {
		return nil, err
	}

	return &observabilityImplementation{
		log:         NewZapLoggerFrom(l),
		zap:         l,
		meter:       NewPrometheusMeter(),
		metricsAddr: cfg.MetricsAddr,
	}, nil
}
