package implementation

import (
	"errors"
	"time"

	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type prometheusMeter struct {
	registry *prometheus.Registry
}

// NewPrometheusMeter returns a Meter backed by its own registry, with the Go
// runtime and process collectors already registered.
func NewPrometheusMeter() observability.Meter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusMeter{registry: reg}
}

func (m *prometheusMeter) Registry() *prometheus.Registry {
	return m.registry
}

func PromRegistry(m observability.Meter) *prometheus.Registry {
	if pm, ok := m.(*prometheusMeter); ok {
		return pm.Registry()
	}
	return nil
}

// register returns the collector already registered under the same
// descriptor, so asking twice for one metric yields one series.
func register[T prometheus.Collector](reg *prometheus.Registry, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// -------------------- Counter --------------------

type promCounter struct {
	vec *prometheus.CounterVec
}

func (m *prometheusMeter) Counter(name string, opts ...observability.MetricOpt) observability.Counter {
	opt := firstOpt(opts)

	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        name,
			Help:        opt.Help,
			ConstLabels: toPromLabelsMap(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	return &promCounter{vec: register(m.registry, vec)}
}

func (c *promCounter) Inc(v float64, labels ...observability.Label) {
	c.vec.With(toPromLabelsMap(labels)).Add(v)
}

// -------------------- Histogram --------------------

type promHistogram struct {
	vec *prometheus.HistogramVec
}

func (m *prometheusMeter) Histogram(name string, opts ...observability.MetricOpt) observability.Histogram {
	opt := firstOpt(opts)

	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        name,
			Help:        opt.Help,
			Buckets:     opt.Buckets,
			ConstLabels: toPromLabelsMap(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	return &promHistogram{vec: register(m.registry, vec)}
}

func (h *promHistogram) Observe(v float64, labels ...observability.Label) {
	h.vec.With(toPromLabelsMap(labels)).Observe(v)
}

// -------------------- Gauge --------------------

type promGauge struct {
	vec *prometheus.GaugeVec
}

func (m *prometheusMeter) Gauge(name string, opts ...observability.MetricOpt) observability.Gauge {
	opt := firstOpt(opts)

	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        name,
			Help:        opt.Help,
			ConstLabels: toPromLabelsMap(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	return &promGauge{vec: register(m.registry, vec)}
}

func (g *promGauge) Set(v float64, labels ...observability.Label) {
	g.vec.With(toPromLabelsMap(labels)).Set(v)
}

func (g *promGauge) Add(v float64, labels ...observability.Label) {
	g.vec.With(toPromLabelsMap(labels)).Add(v)
}

// -------------------- Timer --------------------

type promTimer struct {
	histogram *prometheus.HistogramVec
}

func (m *prometheusMeter) Timer(name string, opts ...observability.MetricOpt) observability.Timer {
	opt := firstOpt(opts)

	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        name,
			Help:        opt.Help,
			Buckets:     opt.Buckets,
			ConstLabels: toPromLabelsMap(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	return &promTimer{histogram: register(m.registry, vec)}
}

func (t *promTimer) Start(labels ...observability.Label) func() {
	start := time.Now()
	return func() {
		t.histogram.With(toPromLabelsMap(labels)).Observe(time.Since(start).Seconds())
	}
}

// -------------------- Helpers --------------------

func firstOpt(opts []observability.MetricOpt) observability.MetricOpt {
	if len(opts) == 0 {
		return observability.MetricOpt{}
	}
	return opts[0]
}

func toPromLabelsMap(labels []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		m[l.Key] = l.Value
	}
	return m
}
