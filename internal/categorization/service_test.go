package categorization

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/cache"
	"github.com/richxcame/expense-tracker/pkg/models"
	pkgredis "github.com/richxcame/expense-tracker/pkg/redis"
	"github.com/richxcame/expense-tracker/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockModelClient is a mock implementation of ModelClient
type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func testBreaker(name string, threshold uint32) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.Settings{Name: name, Timeout: time.Minute, FailureThreshold: threshold}, nil)
}

func testOptions() []models.CategoryOption {
	owner := uuid.New()
	return []models.CategoryOption{
		{ID: uuid.New(), Name: "Food & Dining", IsDefault: true},
		{ID: uuid.New(), Name: "Transportation", IsDefault: true},
		{ID: uuid.New(), Name: "Coffee Runs", UserID: &owner},
	}
}

const coffeeAnswer = "```json\n{\"category\":\"coffee runs\",\"subcategory\":\"\",\"tags\":[\"Coffee\",\" \"],\"confidence\":0.93,\"rationale\":\"Starbucks is a coffee shop\"}\n```"

func TestCategorize_ModelAnswerIsCachedAndReused(t *testing.T) {
	ctx := context.Background()
	model := new(MockModelClient)
	store := cache.NewMemoryStore()
	svc := NewService(store, model, WithBreaker(testBreaker("test-cache", 5)))
	userID := uuid.New()

	model.On("Complete", mock.Anything, mock.AnythingOfType("string")).Return(coffeeAnswer, nil).Once()

	first := svc.Categorize(ctx, userID, "Starbucks  Latte", 5.5, testOptions(), nil)
	assert.Equal(t, "Coffee Runs", first.Primary, "model answer is mapped onto the option's spelling")
	assert.Equal(t, []string{"coffee"}, first.Tags)
	assert.Equal(t, 0.93, first.Confidence)

	second := svc.Categorize(ctx, userID, "  starbucks latte ", 7, testOptions(), nil)
	assert.Equal(t, first, second)

	model.AssertNumberOfCalls(t, "Complete", 1)
	assert.Equal(t, 1, store.Len())
}

func TestCategorize_CacheIsPerUser(t *testing.T) {
	ctx := context.Background()
	model := new(MockModelClient)
	svc := NewService(cache.NewMemoryStore(), model, WithBreaker(testBreaker("test-per-user", 5)))

	model.On("Complete", mock.Anything, mock.Anything).Return(`{"category":"Transportation","confidence":0.8}`, nil).Twice()

	svc.Categorize(ctx, uuid.New(), "Uber", 12, nil, nil)
	svc.Categorize(ctx, uuid.New(), "Uber", 12, nil, nil)

	model.AssertNumberOfCalls(t, "Complete", 2)
}

func TestCategorize_FailuresReturnUncachedFallback(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		err        error
		wantReason string
	}{
		{"model error", "", errors.New("HTTP 500: boom"), "HTTP 500: boom"},
		{"unparseable", "I think this is food", nil, "failed to parse model response"},
		{"empty category", `{"category":"  ","confidence":0.5}`, nil, ErrEmptyCategory.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			model := new(MockModelClient)
			store := cache.NewMemoryStore()
			svc := NewService(store, model, WithBreaker(testBreaker("test-fallback-"+tt.name, 10)))
			userID := uuid.New()

			model.On("Complete", mock.Anything, mock.Anything).Return(tt.answer, tt.err).Twice()

			got := svc.Categorize(ctx, userID, "Mystery charge", 9.99, nil, nil)

			assert.Equal(t, models.UncategorizedLabel, got.Primary)
			assert.Equal(t, []string{}, got.Tags)
			assert.Zero(t, got.Confidence)
			assert.True(t, strings.HasPrefix(got.Rationale, "automatic categorization failed: "))
			assert.Contains(t, got.Rationale, tt.wantReason)
			assert.Zero(t, store.Len(), "fallback must not be cached")

			// next call goes to the model again
			svc.Categorize(ctx, userID, "Mystery charge", 9.99, nil, nil)
			model.AssertNumberOfCalls(t, "Complete", 2)
		})
	}
}

func TestCategorize_OpenBreakerSkipsModel(t *testing.T) {
	ctx := context.Background()
	model := new(MockModelClient)
	svc := NewService(cache.NewMemoryStore(), model, WithBreaker(testBreaker("test-open", 2)))
	userID := uuid.New()

	model.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Twice()

	svc.Categorize(ctx, userID, "a", 1, nil, nil)
	svc.Categorize(ctx, userID, "b", 1, nil, nil)
	got := svc.Categorize(ctx, userID, "c", 1, nil, nil)

	assert.True(t, got.IsFallback())
	assert.Contains(t, got.Rationale, resilience.ErrCircuitOpen.Error())
	model.AssertNumberOfCalls(t, "Complete", 2)
}

func TestCategorize_CacheBackendErrorFallsThroughToModel(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	model := new(MockModelClient)
	svc := NewService(cache.NewRedisStore(pkgredis.NewFromClient(db)), model, WithBreaker(testBreaker("test-redis", 5)))
	userID := uuid.New()
	key := CacheKey(userID, "Netflix")

	redisMock.ExpectGet(key).SetErr(errors.New("connection refused"))
	model.On("Complete", mock.Anything, mock.Anything).Return(`{"category":"Entertainment","tags":["streaming"],"confidence":0.99}`, nil).Once()

	got := svc.Categorize(ctx, userID, "Netflix", 15.99, nil, nil)

	// the write after the model answer fails too and is only logged
	assert.Equal(t, "Entertainment", got.Primary)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRemember_ManualCategoryWinsOnNextCategorize(t *testing.T) {
	ctx := context.Background()
	model := new(MockModelClient)
	svc := NewService(cache.NewMemoryStore(), model, WithBreaker(testBreaker("test-remember", 5)))
	userID := uuid.New()

	manual := ManualCategory(" Health ", "Pharmacy", []string{"meds", ""})
	svc.Remember(ctx, userID, "Drogasil", manual)

	got := svc.Categorize(ctx, userID, "DROGASIL", 30, nil, nil)

	assert.Equal(t, manual, got)
	model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestManualCategory(t *testing.T) {
	c := ManualCategory("Travel", "", nil)

	assert.Equal(t, "Travel", c.Primary)
	assert.Equal(t, 1.0, c.Confidence)
	assert.Equal(t, "manually set", c.Rationale)
	assert.Equal(t, []string{}, c.Tags)
}

func TestCacheKey(t *testing.T) {
	userID := uuid.MustParse("5f0c7e2a-8d7e-4b1a-9c55-0a1b2c3d4e5f")

	key := CacheKey(userID, "  Uber   Trip ")
	assert.True(t, strings.HasPrefix(key, "category:"))
	assert.Len(t, key, len("category:")+64)
	assert.Equal(t, key, CacheKey(userID, "uber trip"))
	assert.NotEqual(t, key, CacheKey(uuid.New(), "uber trip"))
	assert.NotEqual(t, key, CacheKey(userID, "uber trips"))
}

func TestNewService_DefaultBreaker(t *testing.T) {
	svc := NewService(cache.NewMemoryStore(), new(MockModelClient))
	require.NotNil(t, svc.Breaker())
	assert.Equal(t, "llm", svc.Breaker().Name())
	assert.Equal(t, DefaultCacheTTL, svc.ttl)
}
