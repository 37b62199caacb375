package tracing

import (
	"context"
	"fmt"
)

type carrierKey struct{}

func ContextWithCarrier(ctx context.Context, c *Carrier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil {
		c = background
	}
	return context.WithValue(ctx, carrierKey{}, c)
}

// CarrierFromContext returns the ambient carrier of ctx, or Background.
func CarrierFromContext(ctx context.Context) *Carrier {
	if ctx == nil {
		return background
	}
	if c, ok := ctx.Value(carrierKey{}).(*Carrier); ok && c != nil {
		return c
	}
	return background
}

// Run makes c the ambient carrier for the dynamic extent of fn, including
// every goroutine fn starts with the context it receives. ctx itself is left
// untouched, so once Run returns (normally, with an error, by panic or after
// cancellation) the caller still sees the carrier it had before.
func Run(ctx context.Context, c *Carrier, fn func(ctx context.Context) error) error {
	return fn(ContextWithCarrier(ctx, c))
}

// Start opens a child of the ambient span, or a root span when there is
// none, and returns a context carrying it.
func Start(ctx context.Context, reg Registry, name string, opts ...StartOption) (context.Context, *Span) {
	carrier := CarrierFromContext(ctx)
	parent, _ := carrier.Current()
	span := reg.StartSpan(name, parent, opts...)
	return ContextWithCarrier(ctx, WithValue(carrier, span)), span
}

// Trace runs fn inside a child span that is ended on every exit path. A
// returned error is recorded on the span; a panic is recorded and re-raised
// after the span has ended.
func Trace(ctx context.Context, reg Registry, name string, fn func(ctx context.Context) error, opts ...StartOption) (err error) {
	ctx, span := Start(ctx, reg, name, opts...)

	defer func() {
		if r := recover(); r != nil {
			span.RecordError(fmt.Errorf("panic: %v", r))
			_ = reg.EndSpan(span)
			panic(r)
		}
		span.RecordError(err)
		if endErr := reg.EndSpan(span); endErr != nil && err == nil {
			err = endErr
		}
	}()

	return fn(ctx)
}

// Detach keeps the ambient carrier of ctx but drops its cancellation and
// deadline, for work that outlives the request that started it.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// Go runs fn on a new goroutine with a detached copy of ctx.
func Go(ctx context.Context, fn func(ctx context.Context)) {
	detached := Detach(ctx)
	go fn(detached)
}
