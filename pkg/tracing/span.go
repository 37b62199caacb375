package tracing

import (
	"fmt"
	"sync"
	"time"
)

type SpanKind int

const (
	KindInternal SpanKind = iota
	KindServer
	KindClient
)

func (k SpanKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	default:
		return "internal"
	}
}

const (
	AttributeError        = "error"
	AttributeErrorMessage = "error.message"
)

// SpanConfig holds the immutable identity of a span at creation time.
type SpanConfig struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
	Name         string
	Kind         SpanKind
	StartTime    time.Time
	Attributes   map[string]any
}

// Span is one traced unit of work. Identity fields never change after
// creation; attributes and the end time are guarded and frozen once the span
// has ended.
type Span struct {
	traceID      string
	spanID       string
	parentSpanID string
	name         string
	kind         SpanKind
	startTime    time.Time

	mu         sync.Mutex
	ended      bool
	endTime    time.Time
	attributes map[string]any
}

// NewSpan is meant for Registry implementations. Application code starts
// spans through a Registry.
func NewSpan(cfg SpanConfig) *Span {
	s := &Span{
		traceID:      cfg.TraceID,
		spanID:       cfg.SpanID,
		parentSpanID: cfg.ParentSpanID,
		name:         cfg.Name,
		kind:         cfg.Kind,
		startTime:    cfg.StartTime,
	}
	for k, v := range cfg.Attributes {
		s.setAttributeLocked(k, v)
	}
	return s
}

func (s *Span) TraceID() string      { return s.traceID }
func (s *Span) SpanID() string       { return s.spanID }
func (s *Span) ParentSpanID() string { return s.parentSpanID }
func (s *Span) Name() string         { return s.name }
func (s *Span) Kind() SpanKind       { return s.kind }
func (s *Span) StartTime() time.Time { return s.startTime }

func (s *Span) Context() SpanContext {
	return SpanContext{TraceID: s.traceID, SpanID: s.spanID}
}

// SetAttribute records a scalar attribute. Integers are stored as int64,
// floats as float64; anything that is not a scalar is stored as its
// fmt.Sprint form. No-op once the span has ended.
func (s *Span) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.setAttributeLocked(key, value)
}

func (s *Span) setAttributeLocked(key string, value any) {
	if s.attributes == nil {
		s.attributes = make(map[string]any)
	}
	s.attributes[key] = normalizeAttribute(value)
}

func (s *Span) Attribute(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.attributes[key]
	return v, ok
}

// RecordError marks the span as failed. A nil error is ignored.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.setAttributeLocked(AttributeError, true)
	s.setAttributeLocked(AttributeErrorMessage, err.Error())
}

func (s *Span) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// EndTime reports the end time and whether the span has ended.
func (s *Span) EndTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime, s.ended
}

// Finish closes the span at end and returns the immutable record to export.
// A second call fails with ErrAlreadyEnded and leaves the first end time
// untouched.
func (s *Span) Finish(end time.Time) (SpanData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return SpanData{}, fmt.Errorf("%w: %s (%s)", ErrAlreadyEnded, s.name, s.spanID)
	}
	s.ended = true
	s.endTime = end
	return s.snapshotLocked(), nil
}

// Snapshot returns a deep copy of the span's current state.
func (s *Span) Snapshot() SpanData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Span) snapshotLocked() SpanData {
	d := SpanData{
		TraceID:      s.traceID,
		SpanID:       s.spanID,
		ParentSpanID: s.parentSpanID,
		Name:         s.name,
		Kind:         s.kind,
		StartTime:    s.startTime,
		EndTime:      s.endTime,
	}
	if len(s.attributes) > 0 {
		d.Attributes = make(map[string]any, len(s.attributes))
		for k, v := range s.attributes {
			d.Attributes[k] = v
		}
	}
	return d
}

// SpanData is the finished, immutable record of a span handed to exporters.
type SpanData struct {
	Attributes   map[string]any
	StartTime    time.Time
	EndTime      time.Time
	TraceID      string
	SpanID       string
	ParentSpanID string
	Name         string
	Kind         SpanKind
}

func (d SpanData) Duration() time.Duration {
	if d.EndTime.IsZero() {
		return 0
	}
	return d.EndTime.Sub(d.StartTime)
}

func (d SpanData) IsRoot() bool {
	return d.ParentSpanID == ""
}

func (d SpanData) Context() SpanContext {
	return SpanContext{TraceID: d.TraceID, SpanID: d.SpanID}
}

// Failed reports whether RecordError was called on the span, along with the
// recorded message.
func (d SpanData) Failed() (string, bool) {
	failed, _ := d.Attributes[AttributeError].(bool)
	if !failed {
		return "", false
	}
	msg, _ := d.Attributes[AttributeErrorMessage].(string)
	return msg, true
}

func normalizeAttribute(value any) any {
	switch v := value.(type) {
	case string, bool, int64, float64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
