package expenses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/middleware"
	"github.com/richxcame/expense-tracker/pkg/models"
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

func (m *MockService) CreateExpense(ctx context.Context, userID uuid.UUID, req *CreateExpenseRequest) (*models.Expense, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockService) GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	args := m.Called(ctx, userID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockService) UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, req *UpdateExpenseRequest) (*models.Expense, error) {
	args := m.Called(ctx, userID, expenseID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockService) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	args := m.Called(ctx, userID, expenseID)
	return args.Error(0)
}

func (m *MockService) ListExpenses(ctx context.Context, userID uuid.UUID, targetCurrency string, filter *models.ExpenseFilter, limit, offset int) ([]ExpenseView, int64, error) {
	args := m.Called(ctx, userID, targetCurrency, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ExpenseView), args.Get(1).(int64), args.Error(2)
}

func (m *MockService) GetCurrencies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockService) GetAnalytics(ctx context.Context, userID uuid.UUID, targetCurrency string, from, to *time.Time) (*Analytics, error) {
	args := m.Called(ctx, userID, targetCurrency, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Analytics), args.Error(1)
}

func setupRouter(svc *MockService, userID uuid.UUID) *gin.Engine {
	router := gin.New()
	api := router.Group("/api/v1")
	if userID != uuid.Nil {
		api.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, userID)
			c.Next()
		})
	}
	NewHandler(svc).RegisterRoutes(api)
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
	req.Header.Set("Accept-Language", "pt-BR")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) common.Response {
	t.Helper()
	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ========================================
// CREATE
// ========================================

func TestHandler_Create(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	expense := testExpense(userID)
	expense.Category = nil

	svc.On("CreateExpense", mock.Anything, userID, mock.MatchedBy(func(req *CreateExpenseRequest) bool {
		return req.Description == "Uber to airport" && req.Amount == 42.5 && req.Currency == "USD"
	})).Return(expense, nil)

	w := perform(setupRouter(svc, userID), http.MethodPost, "/api/v1/expenses", `{"description":"Uber to airport","amount":42.5,"currency":"USD"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Despesa criada, categoria pendente", resp.Message)
	data := resp.Data.(map[string]interface{})
	assert.Nil(t, data["category"])
	svc.AssertExpectations(t)
}

func TestHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"amount":10}`},
		{"blank description", `{"description":"  ","amount":10}`},
		{"zero amount", `{"description":"x","amount":0}`},
		{"negative amount", `{"description":"x","amount":-1}`},
		{"bad currency", `{"description":"x","amount":1,"currency":"dollars"}`},
		{"too long", `{"description":"` + strings.Repeat("a", 501) + `","amount":1}`},
		{"malformed json", `{"description":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			w := perform(setupRouter(svc, uuid.New()), http.MethodPost, "/api/v1/expenses", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Unauthorized(t *testing.T) {
	router := setupRouter(new(MockService), uuid.Nil)

	for _, path := range []string{"/api/v1/expenses", "/api/v1/expenses/analytics", "/api/v1/expenses/" + uuid.NewString()} {
		w := perform(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

// ========================================
// LIST
// ========================================

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	expense := testExpense(userID)
	views := []ExpenseView{{Expense: expense, DisplayAmount: 212.5, DisplayCurrency: "BRL", Converted: true}}
	wantFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	svc.On("ListExpenses", mock.Anything, userID, "BRL", &models.ExpenseFilter{From: &wantFrom, To: &wantTo, Category: "Travel", Search: "uber"}, 10, 20).
		Return(views, int64(31), nil)

	w := perform(setupRouter(svc, userID), http.MethodGet, "/api/v1/expenses?currency=BRL&from=2024-01-01&to=2024-01-31&category=Travel&search=uber&limit=10&offset=20", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(31), resp.Meta.Total)
	assert.Equal(t, 4, resp.Meta.TotalPages)

	items := resp.Data.(map[string]interface{})["expenses"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, 212.5, item["display_amount"])
	assert.Equal(t, 42.5, item["original_amount"])
	assert.Equal(t, "USD", item["original_currency"])
}

func TestHandler_List_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad currency", "?currency=zz"},
		{"bad date", "?from=01/02/2024"},
		{"inverted range", "?from=2024-02-01&to=2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			w := perform(setupRouter(svc, uuid.New()), http.MethodGet, "/api/v1/expenses"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// ========================================
// GET / UPDATE / DELETE
// ========================================

func TestHandler_Get(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	expense := testExpense(userID)
	missing := uuid.New()

	svc.On("GetExpense", mock.Anything, userID, expense.ID).Return(expense, nil)
	svc.On("GetExpense", mock.Anything, userID, missing).Return(nil, common.NewNotFoundError("expense not found", nil))
	router := setupRouter(svc, userID)

	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/api/v1/expenses/"+expense.ID.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/v1/expenses/"+missing.String(), "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/v1/expenses/nope", "").Code)
}

func TestHandler_Update(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	expense := testExpense(userID)

	svc.On("UpdateExpense", mock.Anything, userID, expense.ID, mock.MatchedBy(func(req *UpdateExpenseRequest) bool {
		return req.Description == nil && req.Amount != nil && *req.Amount == 50 &&
			req.Category != nil && req.Category.Primary == "Travel"
	})).Return(expense, nil)

	w := perform(setupRouter(svc, userID), http.MethodPut, "/api/v1/expenses/"+expense.ID.String(),
		`{"amount":50,"category":{"primary":"Travel","tags":["trip"]}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Update_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"blank description", `{"description":" "}`},
		{"negative amount", `{"amount":-3}`},
		{"bad currency", `{"currency":"EURO"}`},
		{"manual category without label", `{"category":{"secondary":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			w := perform(setupRouter(svc, uuid.New()), http.MethodPut, "/api/v1/expenses/"+uuid.NewString(), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	id := uuid.New()
	svc.On("DeleteExpense", mock.Anything, userID, id).Return(nil)

	w := perform(setupRouter(svc, userID), http.MethodDelete, "/api/v1/expenses/"+id.String(), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Despesa excluída", decodeResponse(t, w).Message)
}

// ========================================
// ANALYTICS / CURRENCIES
// ========================================

func TestHandler_Analytics(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result := &Analytics{Currency: "EUR", Total: 120, Count: 4, Categories: []CategoryTotal{}, Unconverted: []string{}}

	svc.On("GetAnalytics", mock.Anything, userID, "EUR", &wantFrom, (*time.Time)(nil)).Return(result, nil)

	w := perform(setupRouter(svc, userID), http.MethodGet, "/api/v1/expenses/analytics?currency=EUR&from=2024-03-01", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "EUR", data["currency"])
	assert.Equal(t, 120.0, data["total"])
}

func TestHandler_Currencies(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	svc.On("GetCurrencies", mock.Anything, userID).Return([]string{"BRL"}, nil)

	w := perform(setupRouter(svc, userID), http.MethodGet, "/api/v1/expenses/currencies", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"BRL"}, decodeResponse(t, w).Data.(map[string]interface{})["currencies"])
}
