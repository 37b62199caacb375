package interceptor

import (
	"context"
	"strings"

	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	TraceIDMetadataKey = "x-trace-id"

	AttributeRPCMethod     = "rpc.method"
	AttributeRPCStatusCode = "rpc.grpc.status_code"
)

// TracingInterceptor opens a server span per call, continuing the caller's
// trace from incoming metadata. The span is ambient for the handler and
// every interceptor after this one. Place it first in the chain so the
// status it records is the one sent to the client.
func TracingInterceptor(reg tracing.Registry, log observability.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		opts := []tracing.StartOption{
			tracing.WithKind(tracing.KindServer),
			tracing.WithAttributes(map[string]any{AttributeRPCMethod: info.FullMethod}),
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if remote, ok := tracing.Extract(ctx, metadataCarrier(md)); ok {
				opts = append(opts, tracing.WithRemoteParent(remote))
			}
		}

		span := reg.StartSpan(info.FullMethod, nil, opts...)
		_ = grpc.SetHeader(ctx, metadata.Pairs(TraceIDMetadataKey, span.TraceID()))

		defer func() {
			span.RecordError(err)
			span.SetAttribute(AttributeRPCStatusCode, int64(status.Code(err)))
			if endErr := reg.EndSpan(span); endErr != nil {
				log.Warn("failed to end rpc span", observability.Err(endErr), observability.TraceID(span.TraceID()))
			}
		}()

		err = tracing.Run(ctx, tracing.WithValue(tracing.CarrierFromContext(ctx), span), func(ctx context.Context) error {
			var herr error
			resp, herr = handler(ctx, req)
			return herr
		})
		return resp, err
	}
}

// metadataCarrier adapts gRPC metadata to the propagation carrier
// interface. Keys are lowercase in metadata.
type metadataCarrier metadata.MD

func (c metadataCarrier) Get(key string) string {
	vals := metadata.MD(c).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (c metadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, strings.ToLower(k))
	}
	return keys
}
