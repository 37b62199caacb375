package repository

import (
	"context"
	"errors"

	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	"github.com/jt828/go-graphql-tracing/pkg/model"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	"gorm.io/gorm"
)

type SpanRepository interface {
	// Get returns nil without error when the span is not stored.
	Get(ctx context.Context, spanId string) (*model.Span, error)
	Insert(ctx context.Context, span *model.Span) error
	ListByTraceId(ctx context.Context, traceId string) ([]*model.Span, error)
}

type SpanRepositoryImpl struct {
	db    *gorm.DB
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
}

func NewSpanRepository(db *gorm.DB, cb circuitbreaker.CircuitBreaker, retry retry.Retry) SpanRepository {
	return &SpanRepositoryImpl{db: db, cb: cb, retry: retry}
}

func (r *SpanRepositoryImpl) Get(ctx context.Context, spanId string) (*model.Span, error) {
	result, err := r.cb.Execute(func() (any, error) {
		var span *model.Span
		err := r.retry.Execute(ctx, func(ctx context.Context) error {
			var entity model.SpanDataEntity
			if err := r.db.WithContext(ctx).First(&entity, "span_id = ?", spanId).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			domain := entity.ToDomain()
			span = &domain
			return nil
		})
		if err != nil {
			return nil, err
		}
		return span, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.Span), nil
}

func (r *SpanRepositoryImpl) Insert(ctx context.Context, span *model.Span) error {
	_, err := r.cb.Execute(func() (any, error) {
		err := r.retry.Execute(ctx, func(ctx context.Context) error {
			entity := model.SpanDataEntity{
				SpanId:       span.SpanId,
				TraceId:      span.TraceId,
				ParentSpanId: span.ParentSpanId,
				Name:         span.Name,
				Kind:         span.Kind,
				ServiceName:  span.ServiceName,
				StartTime:    span.StartTime,
				EndTime:      span.EndTime,
				DurationUs:   span.Duration.Microseconds(),
			}
			return r.db.WithContext(ctx).Create(&entity).Error
		})
		return nil, err
	})
	return err
}

// ListByTraceId returns the spans of one trace ordered by start time. An
// unknown trace yields an empty slice.
func (r *SpanRepositoryImpl) ListByTraceId(ctx context.Context, traceId string) ([]*model.Span, error) {
	result, err := r.cb.Execute(func() (any, error) {
		var spans []*model.Span
		err := r.retry.Execute(ctx, func(ctx context.Context) error {
			var entities []model.SpanDataEntity
			if err := r.db.WithContext(ctx).
				Where("trace_id = ?", traceId).
				Order("start_time").
				Find(&entities).Error; err != nil {
				return err
			}
			spans = make([]*model.Span, len(entities))
			for i := range entities {
				s := entities[i].ToDomain()
				spans[i] = &s
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return spans, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*model.Span), nil
}
