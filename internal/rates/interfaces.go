package rates

import (
	"context"
	"time"
)

// RateCache stores rate entries. It knows nothing about freshness.
type RateCache interface {
	Get(ctx context.Context, key string) (*CacheEntry, bool)
	Set(ctx context.Context, key string, entry CacheEntry, ttl time.Duration)
}

// Fetcher retrieves a rate from the external feed. dataset is either
// LatestDataset or a date formatted with DateLayout.
type Fetcher interface {
	FetchFromAPI(ctx context.Context, from, to, dataset string) (float64, error)
}

// ServiceInterface is what the HTTP handler and other domains consume
type ServiceInterface interface {
	GetRate(ctx context.Context, from, to string, date *time.Time) (float64, bool)
	ConvertAmount(ctx context.Context, amount float64, from, to string, date *time.Time) float64
	GetBatchRates(ctx context.Context, froms []string, to string, date *time.Time) map[string]float64
	Convert(ctx context.Context, amount float64, from, to string, date *time.Time) (*Conversion, error)
}
