package tracing

import "errors"

var (
	// ErrEmptyContext is returned when a carrier holds no span. Only the
	// process-level Background carrier is ever empty.
	ErrEmptyContext = errors.New("tracing: no active span")

	// ErrAlreadyEnded is returned when a span is ended a second time.
	ErrAlreadyEnded = errors.New("tracing: span already ended")

	ErrNilSpan = errors.New("tracing: nil span")
)
