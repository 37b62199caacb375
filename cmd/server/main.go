package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jt828/go-graphql-tracing/internal/bootstrap"
	"github.com/jt828/go-graphql-tracing/internal/config"
	"github.com/jt828/go-graphql-tracing/internal/graphql"
	"github.com/jt828/go-graphql-tracing/internal/interceptor"
	"github.com/jt828/go-graphql-tracing/internal/router"
	"github.com/jt828/go-graphql-tracing/internal/service"
	"github.com/jt828/go-graphql-tracing/pkg/exporter"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	"github.com/jt828/go-graphql-tracing/pkg/observability/implementation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	obs, err := implementation.NewObservability(implementation.Config{
		ServiceName: cfg.Trace.ServiceName,
		MetricsAddr: cfg.MetricsAddr,
	})
	if err != nil {
		panic(err)
	}
	log := obs.Logger()
	reg := implementation.PromRegistry(obs.Meter())
	if reg == nil {
		log.Fatal("prometheus registry not available")
	}

	grpcMetrics := grpc_prometheus.NewServerMetrics()
	reg.MustRegister(grpcMetrics)

	if err := obs.Start(ctx); err != nil {
		log.Error("failed to start observability", observability.Err(err))
	}

	ids, err := bootstrap.InitializeIdGenerator(cfg.Hostname)
	if err != nil {
		log.Fatal("failed to initialize id generator", observability.Err(err))
	}

	var (
		db     *gorm.DB
		traces = service.NewUnavailableTraceService()
		store  exporter.SpanStore
	)
	if cfg.DatabaseDSN != "" {
		dbs, err := bootstrap.InitializeDatabase(cfg.DatabaseDSN, obs.Meter(), log)
		if err != nil {
			log.Fatal("failed to initialize database", observability.Err(err))
		}
		db = dbs.DB
		traces = service.NewTraceService(dbs.UnitOfWorkFactory, cfg.Trace.ServiceName)
		store = traces
	} else {
		log.Info("DATABASE_DSN not set, span store disabled")
	}

	spans, err := bootstrap.InitializeTracing(ctx, cfg.Trace, ids, store, log, obs.Meter())
	if err != nil {
		log.Fatal("failed to initialize tracing", observability.Err(err))
	}

	schema, err := graphql.NewSchema(
		graphql.NewResolver(traces, log),
		graphql.NewTracer(spans, log, cfg.GraphQLTraceTrivialFields),
		graphql.Config{Introspection: cfg.GraphQLIntrospection},
	)
	if err != nil {
		log.Fatal("failed to parse graphql schema", observability.Err(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Info("Shutting down server...")
		cancel()
	}()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(schema, spans, log, router.Config{AllowedOrigins: cfg.CORSAllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", observability.Err(err), observability.String("addr", cfg.GRPCAddr))
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcMetrics.UnaryServerInterceptor(),
			interceptor.TracingInterceptor(spans, log),
			interceptor.ErrorInterceptor(log),
		),
		grpc.StreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	setServing := func(serving bool) {
		status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
		if serving {
			status = grpc_health_v1.HealthCheckResponse_SERVING
		}
		healthServer.SetServingStatus("", status)
	}
	setServing(pingDatabase(ctx, db, log))

	if db != nil {
		go func() {
			ticker := time.NewTicker(10 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					setServing(pingDatabase(ctx, db, log))
				}
			}
		}()
	}

	grpcMetrics.InitializeMetrics(server)

	go func() {
		log.Info("gRPC server running", observability.String("addr", cfg.GRPCAddr))
		if err := server.Serve(lis); err != nil {
			log.Fatal("failed to serve grpc", observability.Err(err))
		}
	}()

	go func() {
		log.Info("GraphQL server running", observability.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to serve http", observability.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("Graceful stopping servers...")
	setServing(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop http server", observability.Err(err))
	}
	server.GracefulStop()
	log.Info("servers stopped")

	if err := spans.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to flush span exporters", observability.Err(err))
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := obs.Close(shutdownCtx); err != nil {
		log.Error("failed to close observability", observability.Err(err))
	}
}

// pingDatabase reports whether the span store is reachable. Without a store
// the service is always serving.
func pingDatabase(ctx context.Context, db *gorm.DB, log observability.Logger) bool {
	if db == nil {
		return true
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("failed to get sql db for health check", observability.Err(err))
		return false
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("database ping failed, server marked as not serving", observability.Err(err))
		return false
	}
	return true
}
