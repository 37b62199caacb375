package repository

import (
	"context"

	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	"github.com/jt828/go-graphql-tracing/pkg/model"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	"gorm.io/gorm"
)

type SpanAttributeRepository interface {
	InsertBatch(ctx context.Context, spanId string, attributes []model.SpanAttribute) error
	ListBySpanIds(ctx context.Context, spanIds []string) (map[string][]model.SpanAttribute, error)
}

type SpanAttributeRepositoryImpl struct {
	db    *gorm.DB
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
}

func NewSpanAttributeRepository(db *gorm.DB, cb circuitbreaker.CircuitBreaker, retry retry.Retry) SpanAttributeRepository {
	return &SpanAttributeRepositoryImpl{db: db, cb: cb, retry: retry}
}

func (r *SpanAttributeRepositoryImpl) InsertBatch(ctx context.Context, spanId string, attributes []model.SpanAttribute) error {
	if len(attributes) == 0 {
		return nil
	}

	_, err := r.cb.Execute(func() (any, error) {
		err := r.retry.Execute(ctx, func(ctx context.Context) error {
			entities := make([]model.SpanAttributeDataEntity, len(attributes))
			for i, a := range attributes {
				entities[i] = model.SpanAttributeDataEntity{
					SpanId:    spanId,
					Key:       a.Key,
					Value:     a.Value,
					ValueType: a.ValueType,
				}
			}
			return r.db.WithContext(ctx).Create(&entities).Error
		})
		return nil, err
	})
	return err
}

// ListBySpanIds groups attributes by span id, each group sorted by key.
func (r *SpanAttributeRepositoryImpl) ListBySpanIds(ctx context.Context, spanIds []string) (map[string][]model.SpanAttribute, error) {
	if len(spanIds) == 0 {
		return map[string][]model.SpanAttribute{}, nil
	}

	result, err := r.cb.Execute(func() (any, error) {
		var grouped map[string][]model.SpanAttribute
		err := r.retry.Execute(ctx, func(ctx context.Context) error {
			var entities []model.SpanAttributeDataEntity
			if err := r.db.WithContext(ctx).
				Where("span_id IN ?", spanIds).
				Order("span_id").
				Order("key").
				Find(&entities).Error; err != nil {
				return err
			}
			grouped = make(map[string][]model.SpanAttribute, len(spanIds))
			for i := range entities {
				grouped[entities[i].SpanId] = append(grouped[entities[i].SpanId], entities[i].ToDomain())
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return grouped, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string][]model.SpanAttribute), nil
}
