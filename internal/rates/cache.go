package rates

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/richxcame/expense-tracker/pkg/cache"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

const keyPrefix = "rate:"

// CacheKey builds "rate:<from>:<to>:<date|latest>" with lower-cased codes
func CacheKey(from, to string, date *time.Time) string {
	return keyPrefix + strings.ToLower(from) + ":" + strings.ToLower(to) + ":" + datasetFor(date)
}

func datasetFor(date *time.Time) string {
	if date == nil {
		return LatestDataset
	}
	return date.UTC().Format(DateLayout)
}

// StoreCache is a RateCache over a cache.Store. Backend failures are logged
// and reported as a miss (Get) or ignored (Set).
type StoreCache struct {
	store cache.Store
}

// NewStoreCache creates a rate cache backed by store
func NewStoreCache(store cache.Store) *StoreCache {
	return &StoreCache{store: store}
}

// Get returns the entry stored under key
func (c *StoreCache) Get(ctx context.Context, key string) (*CacheEntry, bool) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		logger.WithContext(ctx).Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.WithContext(ctx).Warn("discarding corrupt rate cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &entry, true
}

// Set stores entry under key for ttl
func (c *StoreCache) Set(ctx context.Context, key string, entry CacheEntry, ttl time.Duration) {
	raw, err := json.Marshal(entry)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to encode rate cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		logger.WithContext(ctx).Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
}
