package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/jt828/go-graphql-tracing/internal/repository"
	"github.com/jt828/go-graphql-tracing/pkg/apperror"
	"github.com/jt828/go-graphql-tracing/pkg/model"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
)

var traceIdPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

type TraceService interface {
	// Save persists a finished span with its attributes. Saving a span that
	// is already stored is a no-op.
	Save(ctx context.Context, span tracing.SpanData) error
	// GetTrace returns every stored span of a trace ordered by start time.
	GetTrace(ctx context.Context, traceId string) ([]*model.Span, error)
}

type traceService struct {
	uowFactory  repository.UnitOfWorkFactory
	serviceName string
}

func NewTraceService(uowFactory repository.UnitOfWorkFactory, serviceName string) TraceService {
	return &traceService{uowFactory: uowFactory, serviceName: serviceName}
}

func (s *traceService) Save(ctx context.Context, span tracing.SpanData) error {
	uow, err := s.uowFactory.New(ctx)
	if err != nil {
		return err
	}

	// A retried export may follow a commit whose acknowledgement was lost.
	existing, err := uow.SpanRepository().Get(ctx, span.SpanID)
	if err != nil {
		_ = uow.Abort(ctx)
		return err
	}
	if existing != nil {
		return uow.Commit(ctx)
	}

	row := &model.Span{
		SpanId:       span.SpanID,
		TraceId:      span.TraceID,
		ParentSpanId: span.ParentSpanID,
		Name:         span.Name,
		Kind:         span.Kind.String(),
		ServiceName:  s.serviceName,
		StartTime:    span.StartTime,
		EndTime:      span.EndTime,
		Duration:     span.Duration(),
	}
	if err := uow.SpanRepository().Insert(ctx, row); err != nil {
		_ = uow.Abort(ctx)
		return err
	}
	if err := uow.SpanAttributeRepository().InsertBatch(ctx, span.SpanID, toAttributes(span.Attributes)); err != nil {
		_ = uow.Abort(ctx)
		return err
	}

	return uow.Commit(ctx)
}

func (s *traceService) GetTrace(ctx context.Context, traceId string) ([]*model.Span, error) {
	if !traceIdPattern.MatchString(traceId) {
		return nil, fmt.Errorf("%w: trace id must be 32 lowercase hex characters", apperror.ErrInvalidArgument)
	}

	uow, err := s.uowFactory.New(ctx)
	if err != nil {
		return nil, err
	}

	spans, err := uow.SpanRepository().ListByTraceId(ctx, traceId)
	if err != nil {
		_ = uow.Abort(ctx)
		return nil, err
	}
	if len(spans) == 0 {
		_ = uow.Abort(ctx)
		return nil, fmt.Errorf("%w: trace %s", apperror.ErrNotFound, traceId)
	}

	spanIds := make([]string, len(spans))
	for i, span := range spans {
		spanIds[i] = span.SpanId
	}
	attributes, err := uow.SpanAttributeRepository().ListBySpanIds(ctx, spanIds)
	if err != nil {
		_ = uow.Abort(ctx)
		return nil, err
	}
	for _, span := range spans {
		span.Attributes = attributes[span.SpanId]
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	return spans, nil
}

func toAttributes(attrs map[string]any) []model.SpanAttribute {
	if len(attrs) == 0 {
		return nil
	}

	out := make([]model.SpanAttribute, 0, len(attrs))
	for k, v := range attrs {
		a := model.SpanAttribute{Key: k}
		switch val := v.(type) {
		case bool:
			a.Value, a.ValueType = strconv.FormatBool(val), model.ValueTypeBool
		case int64:
			a.Value, a.ValueType = strconv.FormatInt(val, 10), model.ValueTypeInt
		case float64:
			a.Value, a.ValueType = strconv.FormatFloat(val, 'g', -1, 64), model.ValueTypeFloat
		default:
			a.Value, a.ValueType = fmt.Sprint(val), model.ValueTypeString
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

type unavailableTraceService struct{}

// NewUnavailableTraceService stands in when no span store is configured.
func NewUnavailableTraceService() TraceService {
	return unavailableTraceService{}
}

func (unavailableTraceService) Save(context.Context, tracing.SpanData) error {
	return fmt.Errorf("%w: span store is not configured", apperror.ErrUnavailable)
}

func (unavailableTraceService) GetTrace(context.Context, string) ([]*model.Span, error) {
	return nil, fmt.Errorf("%w: span store is not configured", apperror.ErrUnavailable)
}
