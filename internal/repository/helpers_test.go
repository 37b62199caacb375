package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type passthroughCB struct{}

func (p *passthroughCB) Name() string                                { return "passthrough" }
func (p *passthroughCB) Execute(fn func() (any, error)) (any, error) { return fn() }
func (p *passthroughCB) State() circuitbreaker.State                 { return circuitbreaker.Closed }

type passthroughRetry struct{}

func (p *passthroughRetry) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func spanColumns() []string {
	return []string{"span_id", "trace_id", "parent_span_id", "name", "kind", "service_name", "start_time", "end_time", "duration_us"}
}

func attributeColumns() []string {
	return []string{"span_id", "key", "value", "value_type"}
}
