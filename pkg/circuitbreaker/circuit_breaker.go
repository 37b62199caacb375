package circuitbreaker

import "time"

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

type CircuitBreaker interface {
	Name() string
	Execute(fn func() (any, error)) (any, error)
	State() State
}

const (
	DefaultMaxFailures = 5
	DefaultTimeout     = 30 * time.Second
)

type Config struct {
	OnStateChange func(name string, from, to State)
	MaxFailures   uint32
	Timeout       time.Duration
}

type Option func(*Config)

// WithMaxFailures trips the breaker after n consecutive failures.
func WithMaxFailures(n uint32) Option {
	return func(c *Config) {
		c.MaxFailures = n
	}
}

// WithTimeout is how long the breaker stays open before letting a probe
// request through.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *Config) {
		c.OnStateChange = fn
	}
}

func ApplyOptions(opts ...Option) *Config {
	c := &Config{
		MaxFailures: DefaultMaxFailures,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
