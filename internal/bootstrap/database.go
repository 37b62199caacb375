package bootstrap

import (
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jt828/go-graphql-tracing/internal/repository"
	"github.com/jt828/go-graphql-tracing/pkg/circuitbreaker"
	cbImpl "github.com/jt828/go-graphql-tracing/pkg/circuitbreaker/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/observability"
	obsImpl "github.com/jt828/go-graphql-tracing/pkg/observability/implementation"
	"github.com/jt828/go-graphql-tracing/pkg/retry"
	retryImpl "github.com/jt828/go-graphql-tracing/pkg/retry/implementation"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB                *gorm.DB
	CircuitBreaker    circuitbreaker.CircuitBreaker
	UnitOfWorkFactory repository.UnitOfWorkFactory
}

func InitializeDatabase(dsn string, meter observability.Meter, log observability.Logger) (*Database, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(obsImpl.NewGormMetricsPlugin(meter)); err != nil {
		return nil, err
	}

	cb := cbImpl.NewCircuitBreaker("postgresql", circuitbreaker.WithOnStateChange(logStateChange(log)))

	r := retryImpl.NewRetry(3, retry.WithRetryable(IsRetryablePgError))
	uowFactory := repository.NewTransactionDbUnitOfWorkFactory(db, cb, r)

	return &Database{
		DB:                db,
		CircuitBreaker:    cb,
		UnitOfWorkFactory: uowFactory,
	}, nil
}

// IsRetryablePgError reports transient postgres failures: serialization
// conflicts, deadlocks and connection loss.
func IsRetryablePgError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001": // serialization_failure
			return true
		case "40P01": // deadlock_detected
			return true
		case "08006": // connection_failure
			return true
		case "08001": // sqlclient_unable_to_establish_sqlconnection
			return true
		case "08004": // sqlserver_rejected_establishment_of_sqlconnection
			return true
		}
	}

	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func logStateChange(log observability.Logger) func(name string, from, to circuitbreaker.State) {
	return func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			observability.String("breaker", name),
			observability.String("from", from.String()),
			observability.String("to", to.String()),
		)
	}
}
