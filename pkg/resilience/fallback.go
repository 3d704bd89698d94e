package resilience

import (
	"context"

	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc handles a call the breaker rejected
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback surfaces ErrCircuitOpen to the caller
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// StaticFallback answers rejected calls with value and no error
func StaticFallback(value interface{}) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("circuit breaker open, returning static fallback", zap.Error(err))
		return value, nil
	}
}

// DegradeWith logs the rejection and still returns ErrCircuitOpen, leaving
// the caller to substitute its own safe default.
func DegradeWith(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("dependency unavailable, circuit open",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
