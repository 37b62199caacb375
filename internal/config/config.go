package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	Trace TraceConfig `envconfig:"TRACE"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":50051"`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	Hostname    string `envconfig:"HOSTNAME" required:"true"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	GraphQLIntrospection      bool `envconfig:"GRAPHQL_INTROSPECTION" default:"true"`
	GraphQLTraceTrivialFields bool `envconfig:"GRAPHQL_TRACE_TRIVIAL_FIELDS" default:"false"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// TraceConfig is read from TRACE_-prefixed variables.
type TraceConfig struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"graphql-tracing"`

	// ZipkinURL is the Zipkin v2 spans endpoint; empty disables Zipkin.
	ZipkinURL string `envconfig:"URL"`

	// OtlpEndpoint is a host:port; empty disables OTLP.
	OtlpEndpoint string `envconfig:"OTLP_ENDPOINT" default:"localhost:4317"`
	OtlpProtocol string `envconfig:"OTLP_PROTOCOL" default:"grpc"`
	OtlpInsecure bool   `envconfig:"OTLP_INSECURE" default:"true"`

	Stdout bool `envconfig:"STDOUT" default:"false"`

	ExportQueueSize     int           `envconfig:"EXPORT_QUEUE_SIZE" default:"1024"`
	ExportTimeout       time.Duration `envconfig:"EXPORT_TIMEOUT" default:"5s"`
	ExportRetries       uint64        `envconfig:"EXPORT_RETRIES" default:"3"`
	ExportRetryInterval time.Duration `envconfig:"EXPORT_RETRY_INTERVAL" default:"100ms"`

	BreakerFailures uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var err error

	if c.Hostname == "" {
		err = multierr.Append(err, errors.New("HOSTNAME must be set"))
	}
	switch c.Trace.OtlpProtocol {
	case "grpc", "http":
	default:
		err = multierr.Append(err, fmt.Errorf("TRACE_OTLP_PROTOCOL must be grpc or http, got %q", c.Trace.OtlpProtocol))
	}
	if c.Trace.ExportQueueSize <= 0 {
		err = multierr.Append(err, errors.New("TRACE_EXPORT_QUEUE_SIZE must be positive"))
	}
	if c.Trace.ExportTimeout <= 0 {
		err = multierr.Append(err, errors.New("TRACE_EXPORT_TIMEOUT must be positive"))
	}
	if c.Trace.BreakerFailures == 0 {
		err = multierr.Append(err, errors.New("TRACE_BREAKER_FAILURES must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		err = multierr.Append(err, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
