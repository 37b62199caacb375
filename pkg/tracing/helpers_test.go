package tracing_test

import (
	"testing"

	idgenImpl "github.com/jt828/go-graphql-tracing/pkg/idgen/implementation"
	obsImpl "github.com/jt828/go-graphql-tracing/pkg/observability/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	tracingImpl "github.com/jt828/go-graphql-tracing/pkg/tracing/implementation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistry(t *testing.T) tracing.Registry {
	t.Helper()

	ids, err := idgenImpl.NewGenerator(1)
	require.NoError(t, err)

	return tracingImpl.NewRegistry(ids, obsImpl.NewZapLoggerFrom(zap.NewNop()), obsImpl.NewPrometheusMeter())
}
