package health

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const checkTimeout = 2 * time.Second

// Checker is a dependency check used by common.HealthCheckWithDeps
type Checker = func() error

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker returns a health check function for the PostgreSQL pool
func DatabaseChecker(pool Pinger) Checker {
	return func() error {
		if pool == nil {
			return errors.New("database connection is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		return pool.Ping(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client redis.UniversalClient) Checker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// BreakerState exposes the state of a circuit breaker
type BreakerState interface {
	State() gobreaker.State
}

// BreakerChecker reports an open circuit as a failed check
func BreakerChecker(name string, b BreakerState) Checker {
	return func() error {
		if b.State() == gobreaker.StateOpen {
			return &BreakerOpenError{Name: name}
		}
		return nil
	}
}

// BreakerOpenError is returned by BreakerChecker while the circuit is open
type BreakerOpenError struct {
	Name string
}

func (e *BreakerOpenError) Error() string {
	return e.Name + " circuit breaker is open"
}
