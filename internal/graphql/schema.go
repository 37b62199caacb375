package graphql

import (
	_ "embed"

	graphqlgo "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var Schema string

type Config struct {
	Introspection      bool
	TraceTrivialFields bool
}

// NewSchema parses the schema and binds it to r. Execution is traced through
// t, so resolvers run with a field span as their ambient span.
func NewSchema(r *Resolver, t *Tracer, cfg Config) (*graphqlgo.Schema, error) {
	opts := []graphqlgo.SchemaOpt{
		graphqlgo.Tracer(t),
		graphqlgo.MaxParallelism(20),
	}
	if !cfg.Introspection {
		opts = append(opts, graphqlgo.DisableIntrospection())
	}
	return graphqlgo.ParseSchema(Schema, r, opts...)
}
