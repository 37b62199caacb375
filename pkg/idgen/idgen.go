package idgen

// Generator mints span and trace identifiers. Trace ids are 32 lowercase hex
// characters and span ids 16, the widths shared by W3C trace context, B3 and
// OTLP.
type Generator interface {
	TraceID() string
	SpanID() string
}
