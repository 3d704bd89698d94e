package categorization

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/cache"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/richxcame/expense-tracker/pkg/resilience"
	"go.uber.org/zap"
)

const keyPrefix = "category:"

// Service classifies expense descriptions. It never fails: any error turns
// into the fallback category.
type Service struct {
	store   cache.Store
	model   ModelClient
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithCacheTTL sets how long categories are cached
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBreaker replaces the default circuit breaker around the model
func WithBreaker(b *resilience.CircuitBreaker) Option {
	return func(s *Service) { s.breaker = b }
}

// NewService creates a categorization service
func NewService(store cache.Store, model ModelClient, opts ...Option) *Service {
	s := &Service{
		store: store,
		model: model,
		ttl:   DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = resilience.NewCircuitBreaker(resilience.Settings{Name: "llm", Timeout: 30 * time.Second}, resilience.DegradeWith("llm"))
	}
	return s
}

// Breaker exposes the model circuit breaker for health checks
func (s *Service) Breaker() *resilience.CircuitBreaker {
	return s.breaker
}

// Categorize returns the category for description. Cached answers are
// returned without calling the model; successful model answers are cached;
// failures return the fallback category, which is not cached.
func (s *Service) Categorize(ctx context.Context, userID uuid.UUID, description string, amount float64, available []models.CategoryOption, history []models.HistoryEntry) models.Category {
	key := CacheKey(userID, description)
	if category, ok := s.lookup(ctx, key); ok {
		categorizations.WithLabelValues("cache_hit").Inc()
		return category
	}

	prompt := BuildPrompt(description, amount, available, history)
	result, err := s.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return s.model.Complete(ctx, prompt)
	})
	if err != nil {
		return s.fallback(ctx, userID, err)
	}

	raw, _ := result.(string)
	category, err := ParseResponse(raw)
	if err != nil {
		return s.fallback(ctx, userID, err)
	}
	category.Primary = canonicalName(category.Primary, available)

	s.Remember(ctx, userID, description, category)
	categorizations.WithLabelValues("model").Inc()
	return category
}

// Remember caches category for (userID, description) so later automatic
// categorizations of the same text return it
func (s *Service) Remember(ctx context.Context, userID uuid.UUID, description string, category models.Category) {
	raw, err := json.Marshal(category)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to encode category for cache", zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, CacheKey(userID, description), raw, s.ttl); err != nil {
		logger.WithContext(ctx).Warn("category cache write failed", zap.Error(err))
	}
}

func (s *Service) lookup(ctx context.Context, key string) (models.Category, bool) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		logger.WithContext(ctx).Warn("category cache read failed", zap.String("key", key), zap.Error(err))
		return models.Category{}, false
	}
	if !found {
		return models.Category{}, false
	}

	var category models.Category
	if err := json.Unmarshal(raw, &category); err != nil || category.Primary == "" {
		logger.WithContext(ctx).Warn("discarding corrupt category cache entry", zap.String("key", key))
		return models.Category{}, false
	}
	if category.Tags == nil {
		category.Tags = []string{}
	}
	return category, true
}

func (s *Service) fallback(ctx context.Context, userID uuid.UUID, cause error) models.Category {
	fields := []zap.Field{zap.String("user_id", userID.String()), zap.Error(cause)}
	if errors.Is(cause, resilience.ErrCircuitOpen) {
		fields = append(fields, zap.String("breaker", s.breaker.Name()))
	}
	if status := StatusCode(cause); status != 0 {
		fields = append(fields, zap.Int("status", status))
	}
	logger.WithContext(ctx).Warn("automatic categorization failed, using fallback category", fields...)
	categorizations.WithLabelValues("fallback").Inc()
	return FallbackCategory(cause)
}

// FallbackCategory is returned whenever automatic categorization fails
func FallbackCategory(cause error) models.Category {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	return models.Category{
		Primary:    models.UncategorizedLabel,
		Tags:       []string{},
		Confidence: 0,
		Rationale:  fallbackRationalePrefix + reason,
	}
}

// ManualCategory builds the category for a user's explicit choice
func ManualCategory(primary, secondary string, tags []string) models.Category {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return models.Category{
		Primary:    strings.TrimSpace(primary),
		Secondary:  strings.TrimSpace(secondary),
		Tags:       cleaned,
		Confidence: 1.0,
		Rationale:  models.ManualRationale,
	}
}

// CacheKey is "category:" + hex(sha256(userID + ":" + normalized description))
func CacheKey(userID uuid.UUID, description string) string {
	sum := sha256.Sum256([]byte(userID.String() + ":" + NormalizeDescription(description)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// NormalizeDescription lower-cases, trims and collapses inner whitespace
func NormalizeDescription(description string) string {
	return strings.Join(strings.Fields(strings.ToLower(description)), " ")
}

// canonicalName maps a case-insensitive match onto the option's spelling
func canonicalName(name string, available []models.CategoryOption) string {
	for _, opt := range available {
		if strings.EqualFold(opt.Name, name) {
			return opt.Name
		}
	}
	return name
}
