package repository

import (
	"context"
	"sync"

	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	"gorm.io/gorm"
)

type UnitOfWork interface {
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
	SpanRepository() SpanRepository
	SpanAttributeRepository() SpanAttributeRepository
}

type transactionDbUnitOfWork struct {
	tx                          *gorm.DB
	cb                          circuitbreaker.CircuitBreaker
	retry                       retry.Retry
	spanRepository              SpanRepository
	spanRepositoryOnce          sync.Once
	spanAttributeRepository     SpanAttributeRepository
	spanAttributeRepositoryOnce sync.Once
}

func (u *transactionDbUnitOfWork) SpanRepository() SpanRepository {
	u.spanRepositoryOnce.Do(func() {
		u.spanRepository = NewSpanRepository(u.tx, u.cb, u.retry)
	})
	return u.spanRepository
}

func (u *transactionDbUnitOfWork) SpanAttributeRepository() SpanAttributeRepository {
	u.spanAttributeRepositoryOnce.Do(func() {
		u.spanAttributeRepository = NewSpanAttributeRepository(u.tx, u.cb, u.retry)
	})
	return u.spanAttributeRepository
}

func (u *transactionDbUnitOfWork) Commit(ctx context.Context) error {
	return u.tx.WithContext(ctx).Commit().Error
}

func (u *transactionDbUnitOfWork) Abort(ctx context.Context) error {
	return u.tx.WithContext(ctx).Rollback().Error
}
