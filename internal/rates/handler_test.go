package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/cache"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/httpclient"
	"github.com/richxcame/expense-tracker/pkg/resilience"
	"github.com/richxcame/expense-tracker/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = validation.RegisterGinValidators()
}

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) GetRate(ctx context.Context, from, to string, date *time.Time) (float64, bool) {
	args := m.Called(ctx, from, to, date)
	return args.Get(0).(float64), args.Bool(1)
}

func (m *MockService) ConvertAmount(ctx context.Context, amount float64, from, to string, date *time.Time) float64 {
	args := m.Called(ctx, amount, from, to, date)
	return args.Get(0).(float64)
}

func (m *MockService) GetBatchRates(ctx context.Context, froms []string, to string, date *time.Time) map[string]float64 {
	args := m.Called(ctx, froms, to, date)
	return args.Get(0).(map[string]float64)
}

func (m *MockService) Convert(ctx context.Context, amount float64, from, to string, date *time.Time) (*Conversion, error) {
	args := m.Called(ctx, amount, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Conversion), args.Error(1)
}

func setupRouter(svc *MockService) *gin.Engine {
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func perform(router *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp common.Response
	resp.Data = out
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestHandler_GetRate(t *testing.T) {
	svc := new(MockService)
	svc.On("GetRate", mock.Anything, "USD", "BRL", (*time.Time)(nil)).Return(4.97, true).Once()

	w := perform(setupRouter(svc), http.MethodGet, "/api/v1/rates?from=USD&to=BRL", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var data RateResponse
	decodeData(t, w, &data)
	assert.Equal(t, RateResponse{From: "USD", To: "BRL", Date: "latest", Rate: 4.97}, data)
}

func TestHandler_GetRate_WithDate(t *testing.T) {
	svc := new(MockService)
	svc.On("GetRate", mock.Anything, "eur", "usd", mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Format(DateLayout) == "2024-01-31"
	})).Return(1.08, true).Once()

	w := perform(setupRouter(svc), http.MethodGet, "/api/v1/rates?from=eur&to=usd&date=2024-01-31", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var data RateResponse
	decodeData(t, w, &data)
	assert.Equal(t, "2024-01-31", data.Date)
	assert.Equal(t, "EUR", data.From)
}

func TestHandler_GetRate_Errors(t *testing.T) {
	svc := new(MockService)
	svc.On("GetRate", mock.Anything, "USD", "BRL", (*time.Time)(nil)).Return(0.0, false).Once()
	router := setupRouter(svc)

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/v1/rates?from=USD&to=BRL", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/v1/rates?from=USD", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/v1/rates?from=USD&to=XXX", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/v1/rates?from=USD&to=BRL&date=31-01-2024", "").Code)
	svc.AssertExpectations(t)
}

func TestHandler_GetBatchRates(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBatchRates", mock.Anything, []string{"USD", "EUR", "BRL"}, "BRL", (*time.Time)(nil)).
		Return(map[string]float64{"USD": 5.0, "BRL": 1}).Once()

	w := perform(setupRouter(svc), http.MethodGet, "/api/v1/rates/batch?from=usd,EUR,,brl,USD&to=brl", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var data BatchRatesResponse
	decodeData(t, w, &data)
	assert.Equal(t, map[string]float64{"USD": 5.0, "BRL": 1}, data.Rates)
	assert.Equal(t, []string{"EUR"}, data.Missing)
	assert.Equal(t, "BRL", data.To)
}

func TestHandler_GetBatchRates_RejectsBadCodes(t *testing.T) {
	tooMany := make([]string, 0, MaxBatchCurrencies+1)
	for i := 0; i <= MaxBatchCurrencies; i++ {
		tooMany = append(tooMany, fmt.Sprintf("C%02d", i))
	}

	tests := []struct {
		name string
		from string
	}{
		{"not a code", "USD,NOT-A-CODE"},
		{"path segments", "X%2F..%2Fadmin"},
		{"unknown code", "USD,QQQ"},
		{"only commas", ",,"},
		{"too many", strings.Join(tooMany, ",")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)

			w := perform(setupRouter(svc), http.MethodGet, "/api/v1/rates/batch?from="+tt.from+"&to=BRL", "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "GetBatchRates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_GetBatchRates_RealServiceNeverFetchesBadCodes(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{"date":"2024-03-01","usd":{"brl":5.0}}`))
	}))
	defer feed.Close()

	fetcher := NewHTTPFetcher(feed.URL, httpclient.NewClient("", time.Second), resilience.RetryConfig{MaxAttempts: 1})
	router := gin.New()
	NewHandler(NewService(NewStoreCache(cache.NewMemoryStore()), fetcher)).RegisterRoutes(router.Group("/api/v1"))

	w := perform(router, http.MethodGet, "/api/v1/rates/batch?from=NOT-A-CODE,X%2F..%2Fadmin&to=BRL", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/rates/batch?from=USD,BRL&to=BRL", "")
	require.Equal(t, http.StatusOK, w.Code)
	var data BatchRatesResponse
	decodeData(t, w, &data)
	assert.Equal(t, map[string]float64{"USD": 5.0, "BRL": 1}, data.Rates)
	assert.Empty(t, data.Missing)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/latest/usd.json"}, paths)
}

func TestHandler_Convert(t *testing.T) {
	svc := new(MockService)
	svc.On("Convert", mock.Anything, 100.0, "USD", "BRL", (*time.Time)(nil)).
		Return(&Conversion{Amount: 100, From: "USD", To: "BRL", ConvertedAmount: 500, Rate: 5, Converted: true}, nil).Once()
	svc.On("Convert", mock.Anything, 100.0, "EUR", "BRL", (*time.Time)(nil)).
		Return(&Conversion{Amount: 100, From: "EUR", To: "BRL", ConvertedAmount: 100}, nil).Once()
	router := setupRouter(svc)

	w := perform(router, http.MethodPost, "/api/v1/rates/convert", `{"amount":100,"from":"USD","to":"BRL"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var data ConvertResponse
	decodeData(t, w, &data)
	assert.Equal(t, "$100.00", data.FormattedAmount)
	assert.Equal(t, "R$500.00", data.FormattedConverted)

	w = perform(router, http.MethodPost, "/api/v1/rates/convert", `{"amount":100,"from":"EUR","to":"BRL"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var unconverted ConvertResponse
	decodeData(t, w, &unconverted)
	assert.False(t, unconverted.Converted)
	assert.Equal(t, "€100.00", unconverted.FormattedConverted)

	w = perform(router, http.MethodPost, "/api/v1/rates/convert", `{"amount":-1,"from":"USD","to":"BRL"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
