package rates

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultFreshWindow = time.Hour
	defaultCacheTTL    = 7 * 24 * time.Hour
)

// Service resolves exchange rates. A cached rate younger than the fresh
// window is served as is; older entries are refetched and only used when the
// feed fails.
type Service struct {
	cache       RateCache
	fetcher     Fetcher
	freshWindow time.Duration
	cacheTTL    time.Duration
	now         func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFreshWindow sets how long a cached rate is preferred over a refetch
func WithFreshWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.freshWindow = d
		}
	}
}

// WithCacheTTL sets how long entries stay in the cache as stale fallbacks
func WithCacheTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// NewService creates a new rate service
func NewService(cache RateCache, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		cache:       cache,
		fetcher:     fetcher,
		freshWindow: defaultFreshWindow,
		cacheTTL:    defaultCacheTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRate returns how many `to` units one `from` unit buys on date (nil means
// latest). ok is false when either code is not an ISO-4217 currency or when
// neither the feed nor the cache has a rate.
func (s *Service) GetRate(ctx context.Context, from, to string, date *time.Time) (float64, bool) {
	if !validation.IsCurrencyCode(from) || !validation.IsCurrencyCode(to) {
		rateLookups.WithLabelValues("invalid").Inc()
		return 0, false
	}
	from = normalizeCode(from)
	to = normalizeCode(to)

	if from == to {
		rateLookups.WithLabelValues("identity").Inc()
		return 1, true
	}

	key := CacheKey(from, to, date)
	entry, cached := s.cache.Get(ctx, key)
	if cached && s.now().Sub(entry.FetchedAt) < s.freshWindow {
		rateLookups.WithLabelValues("fresh").Inc()
		return entry.Rate, true
	}

	rate, err := s.fetcher.FetchFromAPI(ctx, from, to, datasetFor(date))
	if err == nil {
		s.cache.Set(ctx, key, CacheEntry{Rate: rate, FetchedAt: s.now()}, s.cacheTTL)
		rateLookups.WithLabelValues("fetched").Inc()
		return rate, true
	}

	log := logger.WithContext(ctx).With(zap.String("from", from), zap.String("to", to), zap.String("dataset", datasetFor(date)))
	if cached {
		log.Warn("rate feed unavailable, serving stale rate",
			zap.Time("fetched_at", entry.FetchedAt),
			zap.Error(err),
		)
		rateLookups.WithLabelValues("stale").Inc()
		return entry.Rate, true
	}

	log.Warn("no exchange rate available", zap.Error(err))
	rateLookups.WithLabelValues("miss").Inc()
	return 0, false
}

// ConvertAmount converts amount and rounds to 2 decimals, half away from
// zero. When no rate is available the amount is returned unconverted.
func (s *Service) ConvertAmount(ctx context.Context, amount float64, from, to string, date *time.Time) float64 {
	if normalizeCode(from) == normalizeCode(to) {
		return amount
	}

	rate, ok := s.GetRate(ctx, from, to, date)
	if !ok {
		logger.WithContext(ctx).Warn("conversion unavailable, keeping original amount",
			zap.Float64("amount", amount),
			zap.String("from", from),
			zap.String("to", to),
		)
		return amount
	}

	return ApplyRate(amount, rate)
}

// ApplyRate multiplies amount by rate and rounds to 2 decimals
func ApplyRate(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

// GetBatchRates resolves every distinct currency in froms against to
// concurrently. A currency equal to to maps to 1. Invalid codes and failures
// are omitted, so a missing key means "show the original amount".
func (s *Service) GetBatchRates(ctx context.Context, froms []string, to string, date *time.Time) map[string]float64 {
	to = normalizeCode(to)

	result := make(map[string]float64, len(froms))
	if !validation.IsCurrencyCode(to) {
		return result
	}

	seen := make(map[string]struct{}, len(froms))
	pending := make([]string, 0, len(froms))
	for _, from := range froms {
		code := normalizeCode(from)
		if !validation.IsCurrencyCode(code) {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		if code == to {
			result[to] = 1
			continue
		}
		pending = append(pending, code)
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, code := range pending {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			rate, ok := s.GetRate(ctx, code, to, date)
			if !ok {
				return
			}
			mu.Lock()
			result[code] = rate
			mu.Unlock()
		}(code)
	}
	wg.Wait()

	return result
}

// Convert is ConvertAmount with the applied rate reported back
func (s *Service) Convert(ctx context.Context, amount float64, from, to string, date *time.Time) (*Conversion, error) {
	if amount <= 0 {
		return nil, common.NewBadRequestError("amount must be greater than 0", nil)
	}
	if !validation.IsCurrencyCode(from) || !validation.IsCurrencyCode(to) {
		return nil, common.NewBadRequestError("invalid currency code", nil)
	}

	from = normalizeCode(from)
	to = normalizeCode(to)
	conv := &Conversion{Amount: amount, From: from, To: to, ConvertedAmount: amount}

	rate, ok := s.GetRate(ctx, from, to, date)
	if !ok {
		return conv, nil
	}

	conv.Rate = rate
	conv.Converted = true
	if from != to {
		conv.ConvertedAmount = ApplyRate(amount, rate)
	}
	return conv, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
