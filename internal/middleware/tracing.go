package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"go.opentelemetry.io/otel/propagation"
)

const (
	TraceIDHeader = "X-Trace-Id"
	RequestSpan   = "request"

	AttributeHTTPMethod     = "http.method"
	AttributeHTTPTarget     = "http.target"
	AttributeHTTPStatusCode = "http.status_code"
)

// Tracing opens a server span per request, continuing the caller's trace
// when it sent traceparent or B3 headers, and makes it the ambient span for
// the downstream handler. A panicking handler is answered with a 500.
func Tracing(reg tracing.Registry, log observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			opts := []tracing.StartOption{
				tracing.WithKind(tracing.KindServer),
				tracing.WithAttributes(map[string]any{
					AttributeHTTPMethod: r.Method,
					AttributeHTTPTarget: r.URL.RequestURI(),
				}),
			}
			if remote, ok := tracing.Extract(r.Context(), propagation.HeaderCarrier(r.Header)); ok {
				opts = append(opts, tracing.WithRemoteParent(remote))
			}

			span := reg.StartSpan(RequestSpan, nil, opts...)
			w.Header().Set(TraceIDHeader, span.TraceID())

			rec := &statusRecorder{status: http.StatusOK}
			ww := httpsnoop.Wrap(w, rec.hooks())
			aborted := false

			err := tracing.Run(r.Context(), tracing.WithValue(tracing.CarrierFromContext(r.Context()), span),
				func(ctx context.Context) (err error) {
					defer func() {
						if p := recover(); p != nil {
							err = fmt.Errorf("panic: %v", p)
							if p == http.ErrAbortHandler {
								aborted = true
								return
							}
							observability.WithTrace(ctx, log).Error("panic recovered",
								observability.String("panic", fmt.Sprint(p)),
								observability.String("target", r.URL.RequestURI()),
							)
							if !rec.wrote {
								http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
							}
						}
					}()
					next.ServeHTTP(ww, r.WithContext(ctx))
					return nil
				})

			span.RecordError(err)
			span.SetAttribute(AttributeHTTPStatusCode, rec.status)
			if rec.status >= http.StatusInternalServerError && err == nil {
				span.SetAttribute(tracing.AttributeError, true)
			}
			if endErr := reg.EndSpan(span); endErr != nil {
				log.Warn("failed to end request span", observability.Err(endErr), observability.TraceID(span.TraceID()))
			}
			if aborted {
				panic(http.ErrAbortHandler)
			}
		})
	}
}

type statusRecorder struct {
	status int
	wrote  bool
}

func (s *statusRecorder) hooks() httpsnoop.Hooks {
	return httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				if !s.wrote {
					s.status = code
					s.wrote = true
				}
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				s.wrote = true
				return next(b)
			}
		},
	}
}
