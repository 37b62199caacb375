package interceptor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jt828/go-graphql-tracing/internal/interceptor"
	"github.com/jt828/go-graphql-tracing/pkg/apperror"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("no error passes through unchanged", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		resp, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Len(t, log.errorCalls, 0)
	})

	mapped := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"ErrNotFound maps to codes.NotFound", apperror.ErrNotFound, codes.NotFound},
		{"wrapped ErrNotFound maps to codes.NotFound", fmt.Errorf("trace lookup: %w", apperror.ErrNotFound), codes.NotFound},
		{"ErrInvalidArgument maps to codes.InvalidArgument", apperror.ErrInvalidArgument, codes.InvalidArgument},
		{"ErrUnavailable maps to codes.Unavailable", fmt.Errorf("span store: %w", apperror.ErrUnavailable), codes.Unavailable},
	}
	for _, tt := range mapped {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}
			i := interceptor.ErrorInterceptor(log)

			_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
				return nil, tt.err
			})

			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.err.Error(), st.Message())
			assert.Len(t, log.errorCalls, 0)
		})
	}

	t.Run("status errors pass through", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.PermissionDenied, "nope")
		})

		assert.Equal(t, codes.PermissionDenied, status.Code(err))
		assert.Len(t, log.errorCalls, 0)
	})

	t.Run("unknown error maps to codes.Internal and is logged", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		unknownErr := errors.New("database exploded")
		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, unknownErr
		})

		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.Internal, st.Code())
		assert.Equal(t, "internal server error", st.Message())
		require.Len(t, log.errorCalls, 1)
		assert.Equal(t, "unhandled error", log.errorCalls[0].msg)
		assert.Contains(t, log.errorCalls[0].fields, observability.Err(unknownErr))
		assert.Contains(t, log.errorCalls[0].fields, observability.String("method", info.FullMethod))
	})

	t.Run("panic maps to codes.Internal", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		resp, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			panic("boom")
		})

		assert.Nil(t, resp)
		assert.Equal(t, codes.Internal, status.Code(err))
		require.Len(t, log.errorCalls, 1)
		assert.Equal(t, "panic recovered", log.errorCalls[0].msg)
	})
}
