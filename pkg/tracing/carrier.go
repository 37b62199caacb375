package tracing

// Carrier is an immutable snapshot of the active span at one point of a call
// graph. Nesting never mutates a Carrier: WithValue returns a new one that
// remembers its predecessor as the restore point.
type Carrier struct {
	span     *Span
	previous *Carrier
}

var background = &Carrier{}

// Background is the process-level default carrier. It holds no span.
func Background() *Carrier {
	return background
}

// WithValue wraps span in a new Carrier whose restore point is parent.
// A nil parent means Background; a nil span returns parent unchanged.
func WithValue(parent *Carrier, span *Span) *Carrier {
	if parent == nil {
		parent = background
	}
	if span == nil {
		return parent
	}
	return &Carrier{span: span, previous: parent}
}

// Current returns the active span, or ErrEmptyContext for Background.
func (c *Carrier) Current() (*Span, error) {
	if c == nil || c.span == nil {
		return nil, ErrEmptyContext
	}
	return c.span, nil
}

// Previous returns the carrier that was active before this one was entered.
// Background is its own predecessor.
func (c *Carrier) Previous() *Carrier {
	if c == nil || c.previous == nil {
		return background
	}
	return c.previous
}

// Depth is the number of nested scopes below Background.
func (c *Carrier) Depth() int {
	n := 0
	for cur := c; cur != nil && cur.span != nil; cur = cur.previous {
		n++
	}
	return n
}
