package implementation

import (
	"errors"

	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
)

type gobreakerCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewCircuitBreaker(name string, opts ...circuitbreaker.Option) circuitbreaker.CircuitBreaker {
	cfg := circuitbreaker.ApplyOptions(opts...)

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, toState(from), toState(to))
		}
	}

	return &gobreakerCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (g *gobreakerCircuitBreaker) Name() string {
	return g.cb.Name()
}

func (g *gobreakerCircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	return g.cb.Execute(fn)
}

func (g *gobreakerCircuitBreaker) State() circuitbreaker.State {
	return toState(g.cb.State())
}

// IsRejected reports whether err means the breaker refused the call without
// running it.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func toState(s gobreaker.State) circuitbreaker.State {
	switch s {
	case gobreaker.StateHalfOpen:
		return circuitbreaker.HalfOpen
	case gobreaker.StateOpen:
		return circuitbreaker.Open
	default:
		return circuitbreaker.Closed
	}
}
