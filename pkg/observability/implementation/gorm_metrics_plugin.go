package implementation

import (
	"context"
	"time"

	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// GormMetricsPlugin records latency, volume and errors of span store queries.
type GormMetricsPlugin struct {
	queryLatency observability.Histogram
	queryTotal   observability.Counter
	queryErrors  observability.Counter
}

func NewGormMetricsPlugin(meter observability.Meter) *GormMetricsPlugin {
	return &GormMetricsPlugin{
		queryLatency: meter.Histogram("span_store_query_duration_seconds", observability.MetricOpt{
			Help:      "Duration of span store queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			LabelKeys: []string{"operation"},
		}),
		queryTotal: meter.Counter("span_store_query_total", observability.MetricOpt{
			Help:      "Total number of span store queries",
			LabelKeys: []string{"operation"},
		}),
		queryErrors: meter.Counter("span_store_query_errors_total", observability.MetricOpt{
			Help:      "Total number of failed span store queries",
			LabelKeys: []string{"operation"},
		}),
	}
}

func (p *GormMetricsPlugin) Name() string {
	return "span_store_metrics"
}

func (p *GormMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    func(string) error
		after     func(string) error
	}{
		{"create", wrap(cb.Create().Before("gorm:create"), p.before), wrap(cb.Create().After("gorm:create"), p.after("create"))},
		{"query", wrap(cb.Query().Before("gorm:query"), p.before), wrap(cb.Query().After("gorm:query"), p.after("query"))},
		{"update", wrap(cb.Update().Before("gorm:update"), p.before), wrap(cb.Update().After("gorm:update"), p.after("update"))},
		{"delete", wrap(cb.Delete().Before("gorm:delete"), p.before), wrap(cb.Delete().After("gorm:delete"), p.after("delete"))},
		{"row", wrap(cb.Row().Before("gorm:row"), p.before), wrap(cb.Row().After("gorm:row"), p.after("row"))},
		{"raw", wrap(cb.Raw().Before("gorm:raw"), p.before), wrap(cb.Raw().After("gorm:raw"), p.after("raw"))},
	}

	for _, h := range hooks {
		if err := h.before("metrics:before_" + h.operation); err != nil {
			return err
		}
		if err := h.after("metrics:after_" + h.operation); err != nil {
			return err
		}
	}
	return nil
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func wrap(r callbackRegistrar, fn func(*gorm.DB)) func(string) error {
	return func(name string) error {
		return r.Register(name, fn)
	}
}

func (p *GormMetricsPlugin) before(db *gorm.DB) {
	db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
}

func (p *GormMetricsPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		opLabel := observability.Label{Key: "operation", Value: operation}

		p.queryTotal.Inc(1, opLabel)

		if db.Error != nil {
			p.queryErrors.Inc(1, opLabel)
		}

		startTime, ok := db.Statement.Context.Value(queryStartKey{}).(time.Time)
		if ok {
			p.queryLatency.Observe(time.Since(startTime).Seconds(), opLabel)
		}
	}
}
