package implementation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jt828/go-graphql-tracing/pkg/retry"
	retryImpl "github.com/jt828/go-graphql-tracing/pkg/retry/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_Execute(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		r := retryImpl.NewRetry(3, retry.WithInterval(time.Millisecond))
		callCount := 0

		err := r.Execute(context.Background(), func(context.Context) error {
			callCount++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
	})

	t.Run("returns last error after max retries", func(t *testing.T) {
		r := retryImpl.NewRetry(2, retry.WithInterval(time.Millisecond))
		callCount := 0

		err := r.Execute(context.Background(), func(context.Context) error {
			callCount++
			return errors.New("collector down")
		})

		assert.ErrorContains(t, err, "collector down")
		assert.Equal(t, 3, callCount)
	})

	t.Run("non-retryable error fails immediately", func(t *testing.T) {
		fatal := errors.New("bad request")
		r := retryImpl.NewRetry(3,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return !errors.Is(err, fatal) }),
		)
		callCount := 0

		err := r.Execute(context.Background(), func(context.Context) error {
			callCount++
			return fatal
		})

		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, callCount)
	})

	t.Run("capped backoff with jitter still retries", func(t *testing.T) {
		r := retryImpl.NewRetry(4,
			retry.WithInterval(time.Millisecond),
			retry.WithMaxInterval(2*time.Millisecond),
			retry.WithJitter(time.Millisecond),
		)
		callCount := 0

		err := r.Execute(context.Background(), func(context.Context) error {
			callCount++
			if callCount < 4 {
				return errors.New("transient")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 4, callCount)
	})

	t.Run("each call gets a fresh retry budget", func(t *testing.T) {
		r := retryImpl.NewRetry(1, retry.WithInterval(time.Millisecond))

		for i := 0; i < 3; i++ {
			callCount := 0
			err := r.Execute(context.Background(), func(context.Context) error {
				callCount++
				return errors.New("collector down")
			})
			assert.Error(t, err)
			assert.Equal(t, 2, callCount, "call %d", i)
		}
	})

	t.Run("passes the context to the operation", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		r := retryImpl.NewRetry(0)

		err := r.Execute(ctx, func(ctx context.Context) error {
			assert.Equal(t, "v", ctx.Value(key{}))
			return nil
		})

		require.NoError(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		r := retryImpl.NewRetry(100, retry.WithInterval(time.Second))

		ctx, cancel := context.WithCancel(context.Background())
		callCount := 0

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		err := r.Execute(ctx, func(context.Context) error {
			callCount++
			return errors.New("keep failing")
		})

		assert.Error(t, err)
		assert.LessOrEqual(t, callCount, 3)
	})
}

func TestApplyOptions_DefaultInterval(t *testing.T) {
	cfg := retry.ApplyOptions()
	assert.Equal(t, retry.DefaultInterval, cfg.Interval)
	assert.Nil(t, cfg.RetryableFn)
}
