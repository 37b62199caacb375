package router

import (
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/gorilla/mux"
	"github.com/jt828/go-graphql-tracing/internal/middleware"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/tracing"
	"github.com/rs/cors"
)

type Config struct {
	AllowedOrigins []string
}

// New serves GraphQL on /graphql behind the tracing middleware, and an
// untraced liveness probe on /healthz.
func New(schema *graphqlgo.Schema, reg tracing.Registry, log observability.Logger, cfg Config) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	traced := middleware.Tracing(reg, log)
	r.Handle("/graphql", traced(&relay.Handler{Schema: schema})).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.TraceIDHeader},
	}).Handler(r)
}
