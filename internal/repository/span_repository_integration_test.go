//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jt828/go-graphql-tracing/internal/repository"
	cbImpl "github.com/jt828/go-graphql-tracing/pkg/circuitbreaker/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/model"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	retryImpl "github.com/jt828/go-graphql-tracing/pkg/retry/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.WithInitScripts("../../migrations/000001_create_spans.up.sql"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	return db
}

func TestSpanStore_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	factory := repository.NewTransactionDbUnitOfWorkFactory(
		db,
		cbImpl.NewCircuitBreaker("test"),
		retryImpl.NewRetry(0, retry.WithRetryable(func(error) bool { return false })),
	)

	start := time.Now().UTC().Truncate(time.Microsecond)
	root := &model.Span{
		SpanId:      "b7ad6b7169203331",
		TraceId:     traceId,
		Name:        "request",
		Kind:        "server",
		ServiceName: "graphql-tracing",
		StartTime:   start,
		EndTime:     start.Add(40 * time.Millisecond),
		Duration:    40 * time.Millisecond,
	}
	child := &model.Span{
		SpanId:       "00f067aa0ba902b7",
		TraceId:      traceId,
		ParentSpanId: root.SpanId,
		Name:         "graphql.query",
		Kind:         "internal",
		ServiceName:  "graphql-tracing",
		StartTime:    start.Add(time.Millisecond),
		EndTime:      start.Add(30 * time.Millisecond),
		Duration:     29 * time.Millisecond,
	}

	for _, span := range []*model.Span{child, root} {
		uow, err := factory.New(ctx)
		require.NoError(t, err)
		require.NoError(t, uow.SpanRepository().Insert(ctx, span))
		require.NoError(t, uow.SpanAttributeRepository().InsertBatch(ctx, span.SpanId, []model.SpanAttribute{
			{Key: "span.name", Value: span.Name, ValueType: model.ValueTypeString},
		}))
		require.NoError(t, uow.Commit(ctx))
	}

	t.Run("reads a trace back in start order", func(t *testing.T) {
		spans, err := repository.NewSpanRepository(db, cbImpl.NewCircuitBreaker("test"), retryImpl.NewRetry(0)).
			ListByTraceId(ctx, traceId)
		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Equal(t, "request", spans[0].Name)
		assert.Equal(t, root.SpanId, spans[1].ParentSpanId)
		assert.Equal(t, 29*time.Millisecond, spans[1].Duration)
	})

	t.Run("reads attributes grouped by span", func(t *testing.T) {
		grouped, err := repository.NewSpanAttributeRepository(db, cbImpl.NewCircuitBreaker("test"), retryImpl.NewRetry(0)).
			ListBySpanIds(ctx, []string{root.SpanId, child.SpanId})
		require.NoError(t, err)
		assert.Equal(t, "request", grouped[root.SpanId][0].Value)
		assert.Equal(t, "graphql.query", grouped[child.SpanId][0].Value)
	})

	t.Run("gets a stored span by id", func(t *testing.T) {
		repo := repository.NewSpanRepository(db, cbImpl.NewCircuitBreaker("test"), retryImpl.NewRetry(0))

		span, err := repo.Get(ctx, child.SpanId)
		require.NoError(t, err)
		require.NotNil(t, span)
		assert.Equal(t, root.SpanId, span.ParentSpanId)

		missing, err := repo.Get(ctx, "2222222222222222")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("aborted unit of work leaves no rows", func(t *testing.T) {
		uow, err := factory.New(ctx)
		require.NoError(t, err)
		require.NoError(t, uow.SpanRepository().Insert(ctx, &model.Span{
			SpanId:    "1111111111111111",
			TraceId:   "ffffffffffffffffffffffffffffffff",
			Name:      "orphan",
			Kind:      "internal",
			StartTime: start,
			EndTime:   start,
		}))
		require.NoError(t, uow.Abort(ctx))

		spans, err := repository.NewSpanRepository(db, cbImpl.NewCircuitBreaker("test"), retryImpl.NewRetry(0)).
			ListByTraceId(ctx, "ffffffffffffffffffffffffffffffff")
		require.NoError(t, err)
		assert.Empty(t, spans)
	})
}
