package retry

import (
	"context"
	"time"
)

const DefaultInterval = 100 * time.Millisecond

type Retry interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	RetryableFn func(err error) bool
	Interval    time.Duration
	MaxInterval time.Duration
	Jitter      time.Duration
}

type Option func(*Config)

func WithRetryable(fn func(err error) bool) Option {
	return func(c *Config) {
		c.RetryableFn = fn
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxInterval caps the exponential backoff.
func WithMaxInterval(d time.Duration) Option {
	return func(c *Config) {
		c.MaxInterval = d
	}
}

func WithJitter(d time.Duration) Option {
	return func(c *Config) {
		c.Jitter = d
	}
}

func ApplyOptions(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}
