package tracing

import "context"

// Registry creates spans, tracks the open ones and hands finished spans to
// exporters.
type Registry interface {
	// StartSpan allocates and registers a span. With a parent the span joins
	// the parent's trace; without one it starts a fresh trace unless a
	// remote parent is given through WithRemoteParent.
	StartSpan(name string, parent *Span, opts ...StartOption) *Span

	// EndSpan closes the span and exports it. Ending twice fails with
	// ErrAlreadyEnded. Exporter failures are never returned.
	EndSpan(span *Span) error

	OpenSpans() int
	Shutdown(ctx context.Context) error
}

// SpanContext is the identity of a span, local or extracted from an inbound
// request.
type SpanContext struct {
	TraceID string
	SpanID  string
	Remote  bool
}

func (sc SpanContext) IsValid() bool {
	return sc.TraceID != "" && sc.SpanID != ""
}

type StartConfig struct {
	Attributes   map[string]any
	RemoteParent SpanContext
	Kind         SpanKind
}

type StartOption func(*StartConfig)

func WithKind(kind SpanKind) StartOption {
	return func(c *StartConfig) {
		c.Kind = kind
	}
}

// WithRemoteParent continues a trace started in another process. It is
// ignored when a local parent is passed to StartSpan.
func WithRemoteParent(sc SpanContext) StartOption {
	return func(c *StartConfig) {
		c.RemoteParent = sc
	}
}

func WithAttributes(attrs map[string]any) StartOption {
	return func(c *StartConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

func ApplyStartOptions(opts ...StartOption) *StartConfig {
	c := &StartConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
