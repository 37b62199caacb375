package implementation

import (
	"context"

	"github.com/jt828/go-graphql-tracing/pkg/retry"
	goretry "github.com/sethvargo/go-retry"
)

type goRetry struct {
	maxRetries uint64
	cfg        *retry.Config
}

// NewRetry retries up to maxRetries times after the first attempt, with
// exponential backoff starting at the configured interval.
func NewRetry(maxRetries uint64, opts ...retry.Option) retry.Retry {
	return &goRetry{
		maxRetries: maxRetries,
		cfg:        retry.ApplyOptions(opts...),
	}
}

// backoff is built per call: go-retry backoffs count attempts internally.
func (r *goRetry) backoff() goretry.Backoff {
	b := goretry.NewExponential(r.cfg.Interval)
	if r.cfg.MaxInterval > 0 {
		b = goretry.WithCappedDuration(r.cfg.MaxInterval, b)
	}
	if r.cfg.Jitter > 0 {
		b = goretry.WithJitter(r.cfg.Jitter, b)
	}
	return goretry.WithMaxRetries(r.maxRetries, b)
}

func (r *goRetry) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return goretry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if r.cfg.RetryableFn != nil && !r.cfg.RetryableFn(err) {
			return err
		}

		return goretry.RetryableError(err)
	})
}
