package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

// RetryableFunc is an operation that can be retried
type RetryableFunc func(ctx context.Context) (interface{}, error)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	EnableJitter      bool

	// RetryableErrors limits retries to errors matching one of these.
	// Ignored when RetryableChecker is set.
	RetryableErrors  []error
	RetryableChecker func(error) bool

	// Sleep replaces the timer-based wait between attempts. Tests use it to
	// record backoffs without sleeping.
	Sleep SleepFunc

	// Name is used in log lines only
	Name string
}

// DefaultRetryConfig returns sensible defaults for internal calls
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// AggressiveRetryConfig retries more often with shorter waits
func AggressiveRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        16 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// ConservativeRetryConfig retries rarely, for expensive or rate limited calls
func ConservativeRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

type attemptKey struct{}

// Attempt returns the 1-based attempt number of the Retry loop running the
// current operation, or 0 outside of Retry.
func Attempt(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey{}).(int)
	return n
}

// Retry runs operation until it succeeds, returns a non-retryable error,
// ctx is done or MaxAttempts is reached. The last error is returned.
func Retry(ctx context.Context, config RetryConfig, operation RetryableFunc) (interface{}, error) {
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	sleep := config.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		result, err := operation(context.WithValue(ctx, attemptKey{}, attempt))
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !shouldRetry(err, config) || attempt == maxAttempts {
			break
		}

		backoff := calculateBackoff(attempt, config)
		logger.Debug("retrying operation",
			zap.String("operation", config.Name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		if err := sleep(ctx, backoff); err != nil {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// Do is the typed form of Retry
func Do[T any](ctx context.Context, config RetryConfig, operation func(ctx context.Context) (T, error)) (T, error) {
	result, err := Retry(ctx, config, func(ctx context.Context) (interface{}, error) {
		return operation(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := result.(T)
	return typed, nil
}

// RetryWithBreaker retries an operation that runs through a circuit breaker.
// An open circuit stops the retries immediately.
func RetryWithBreaker(ctx context.Context, config RetryConfig, breaker *CircuitBreaker, operation RetryableFunc) (interface{}, error) {
	return Retry(ctx, config, func(ctx context.Context) (interface{}, error) {
		return breaker.Execute(ctx, operation)
	})
}

// CalculateBackoff returns the wait after the given failed attempt
func CalculateBackoff(attempt int, config RetryConfig) time.Duration {
	return calculateBackoff(attempt, config)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	multiplier := config.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	backoff := float64(config.InitialBackoff) * math.Pow(multiplier, float64(attempt-1))
	if config.MaxBackoff > 0 && backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	d := time.Duration(backoff)
	if config.EnableJitter {
		d = addJitter(d)
	}
	return d
}

// addJitter returns a random duration in [0, d]
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}

func shouldRetry(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	if config.RetryableChecker != nil {
		return config.RetryableChecker(err)
	}
	if len(config.RetryableErrors) > 0 {
		for _, retryable := range config.RetryableErrors {
			if errors.Is(err, retryable) {
				return true
			}
		}
		return false
	}
	return true
}

// IsRetryableHTTPStatus reports whether an HTTP status is worth retrying
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return statusCode >= 500
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
