package model

import "time"

type SpanDataEntity struct {
	SpanId       string    `gorm:"column:span_id;primaryKey"`
	TraceId      string    `gorm:"column:trace_id"`
	ParentSpanId string    `gorm:"column:parent_span_id"`
	Name         string    `gorm:"column:name"`
	Kind         string    `gorm:"column:kind"`
	ServiceName  string    `gorm:"column:service_name"`
	StartTime    time.Time `gorm:"column:start_time"`
	EndTime      time.Time `gorm:"column:end_time"`
	DurationUs   int64     `gorm:"column:duration_us"`
}

func (dataEntity *SpanDataEntity) TableName() string {
	return "tracing.spans"
}

func (dataEntity *SpanDataEntity) ToDomain() Span {
	return Span{
		SpanId:       dataEntity.SpanId,
		TraceId:      dataEntity.TraceId,
		ParentSpanId: dataEntity.ParentSpanId,
		Name:         dataEntity.Name,
		Kind:         dataEntity.Kind,
		ServiceName:  dataEntity.ServiceName,
		StartTime:    dataEntity.StartTime,
		EndTime:      dataEntity.EndTime,
		Duration:     time.Duration(dataEntity.DurationUs) * time.Microsecond,
	}
}

type SpanAttributeDataEntity struct {
	SpanId    string `gorm:"column:span_id;primaryKey"`
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value"`
	ValueType string `gorm:"column:value_type"`
}

func (dataEntity *SpanAttributeDataEntity) TableName() string {
	return "tracing.span_attributes"
}

func (dataEntity *SpanAttributeDataEntity) ToDomain() SpanAttribute {
	return SpanAttribute{
		Key:       dataEntity.Key,
		Value:     dataEntity.Value,
		ValueType: dataEntity.ValueType,
	}
}

// Span is a stored, finished span. ParentSpanId is empty for roots.
type Span struct {
	SpanId       string
	TraceId      string
	ParentSpanId string
	Name         string
	Kind         string
	ServiceName  string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Attributes   []SpanAttribute
}

const (
	ValueTypeString = "string"
	ValueTypeBool   = "bool"
	ValueTypeInt    = "int"
	ValueTypeFloat  = "float"
)

type SpanAttribute struct {
	Key       string
	Value     string
	ValueType string
}
