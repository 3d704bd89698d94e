package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errFeedDown   = errors.New("feed unavailable")
	errTransient  = errors.New("transient")
	errValidation = errors.New("validation")
)

// recordingSleep captures the backoffs Retry asks for without waiting
type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func fastConfig(maxAttempts int) (RetryConfig, *recordingSleep) {
	rec := &recordingSleep{}
	cfg := RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Sleep:             rec.sleep,
	}
	return cfg, rec
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	cfg, rec := fastConfig(5)
	calls := 0

	result, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.waits)
}

func TestRetry_ExhaustsAttemptsWithCappedDoublingBackoff(t *testing.T) {
	cfg, rec := fastConfig(5)
	cfg.InitialBackoff = 3 * time.Second
	calls := 0

	result, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errFeedDown
	})

	assert.Nil(t, result)
	assert.Equal(t, errFeedDown, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second, 10 * time.Second, 10 * time.Second}, rec.waits)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	cfg, _ := fastConfig(3)
	errs := []error{errTransient, errTransient, errFeedDown}
	calls := 0

	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		e := errs[calls]
		calls++
		return nil, e
	})

	assert.Equal(t, errFeedDown, err)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	cfg, rec := fastConfig(5)
	calls := 0

	result, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errTransient
		}
		return 4.95, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4.95, result)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
}

func TestRetry_AttemptNumberInContext(t *testing.T) {
	cfg, _ := fastConfig(3)
	var seen []int

	_, _ = Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		seen = append(seen, Attempt(ctx))
		return nil, errTransient
	})

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, 0, Attempt(context.Background()))
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg, _ := fastConfig(5)
	calls := 0

	_, err := Retry(ctx, cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil, errTransient
	})

	assert.Equal(t, errTransient, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_ContextTimeoutWithRealSleep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: 100 * time.Millisecond, BackoffMultiplier: 2}
	calls := 0

	_, err := Retry(ctx, cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errTransient
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_NonRetryableErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*RetryConfig)
		err  error
	}{
		{"not in retryable list", func(c *RetryConfig) { c.RetryableErrors = []error{errTransient} }, errValidation},
		{"checker refuses", func(c *RetryConfig) { c.RetryableChecker = func(err error) bool { return false } }, errTransient},
		{"circuit open", func(c *RetryConfig) {}, ErrCircuitOpen},
		{"context canceled", func(c *RetryConfig) {}, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := fastConfig(4)
			tt.cfg(&cfg)
			calls := 0

			_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
				calls++
				return nil, tt.err
			})

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestRetry_ZeroMaxAttemptsRunsOnce(t *testing.T) {
	cfg, _ := fastConfig(0)
	calls := 0

	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errTransient
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_Typed(t *testing.T) {
	cfg, _ := fastConfig(2)

	rate, err := Do(context.Background(), cfg, func(ctx context.Context) (float64, error) {
		return 5.0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, rate)

	rate, err = Do(context.Background(), cfg, func(ctx context.Context) (float64, error) {
		return 0, errFeedDown
	})
	assert.ErrorIs(t, err, errFeedDown)
	assert.Zero(t, rate)
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, BackoffMultiplier: 2.0}

	expected := map[int]time.Duration{
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 8 * time.Second,
		5: 10 * time.Second,
		9: 10 * time.Second,
	}
	for attempt, want := range expected {
		assert.Equal(t, want, CalculateBackoff(attempt, cfg), "attempt %d", attempt)
	}
}

func TestCalculateBackoff_JitterStaysInRange(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 30 * time.Second, BackoffMultiplier: 2.0, EnableJitter: true}

	for i := 0; i < 20; i++ {
		d := calculateBackoff(3, cfg)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 4*time.Second)
	}
	assert.Equal(t, time.Duration(0), addJitter(0))
}

func TestPresetConfigs(t *testing.T) {
	def := DefaultRetryConfig()
	assert.Equal(t, 3, def.MaxAttempts)
	assert.Equal(t, 30*time.Second, def.MaxBackoff)
	assert.True(t, def.EnableJitter)

	aggressive := AggressiveRetryConfig()
	assert.Equal(t, 5, aggressive.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, aggressive.InitialBackoff)

	conservative := ConservativeRetryConfig()
	assert.Equal(t, 2, conservative.MaxAttempts)
	assert.Equal(t, 10*time.Second, conservative.MaxBackoff)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsRetryableHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsRetryableHTTPStatus(code), "status %d", code)
	}
}

func TestShouldRetry_NilError(t *testing.T) {
	assert.False(t, shouldRetry(nil, DefaultRetryConfig()))
}
