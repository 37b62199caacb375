package tracing_test

import (
	"testing"

	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarrier(t *testing.T) {
	reg := newRegistry(t)

	t.Run("background carrier is empty", func(t *testing.T) {
		span, err := tracing.Background().Current()
		assert.Nil(t, span)
		assert.ErrorIs(t, err, tracing.ErrEmptyContext)
		assert.Equal(t, 0, tracing.Background().Depth())
	})

	t.Run("with value leaves the parent untouched", func(t *testing.T) {
		outer := reg.StartSpan("outer", nil)
		inner := reg.StartSpan("inner", outer)

		parent := tracing.WithValue(tracing.Background(), outer)
		child := tracing.WithValue(parent, inner)

		got, err := parent.Current()
		require.NoError(t, err)
		assert.Same(t, outer, got)

		got, err = child.Current()
		require.NoError(t, err)
		assert.Same(t, inner, got)

		assert.Same(t, parent, child.Previous())
		assert.Same(t, tracing.Background(), parent.Previous())
		assert.Equal(t, 2, child.Depth())
	})

	t.Run("nil parent means background", func(t *testing.T) {
		span := reg.StartSpan("root", nil)
		c := tracing.WithValue(nil, span)

		assert.Same(t, tracing.Background(), c.Previous())
	})

	t.Run("nil span returns the parent", func(t *testing.T) {
		parent := tracing.WithValue(nil, reg.StartSpan("root", nil))
		assert.Same(t, parent, tracing.WithValue(parent, nil))
	})
}
