package expenses

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/i18n"
	"github.com/richxcame/expense-tracker/pkg/middleware"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/richxcame/expense-tracker/pkg/pagination"
)

const dateLayout = "2006-01-02"

var errInvalidRange = errors.New("from must be before to")

// Handler handles HTTP requests for expenses
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new expense handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Create records an expense. Its category is filled in asynchronously.
// POST /api/v1/expenses
func (h *Handler) Create(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateExpenseRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	expense, err := h.service.CreateExpense(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err, "failed to create expense")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusCreated, expense, i18n.Translate("expense.created", c.GetHeader("Accept-Language")))
}

// List returns the caller's expenses converted into ?currency=
// GET /api/v1/expenses?currency=BRL&from=2024-01-01&to=2024-01-31&category=Travel&search=uber&limit=20&offset=0
func (h *Handler) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var q ListQuery
	if !middleware.ValidateAndBindQuery(c, &q) {
		return
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid date range")
		return
	}

	params := pagination.ParseParams(c)
	filter := &models.ExpenseFilter{From: from, To: to, Category: q.Category, Search: q.Search}

	views, total, err := h.service.ListExpenses(c.Request.Context(), userID, q.Currency, filter, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list expenses")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"expenses": views}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// Get returns one expense
// GET /api/v1/expenses/:id
func (h *Handler) Get(c *gin.Context) {
	userID, expenseID, ok := h.ids(c)
	if !ok {
		return
	}

	expense, err := h.service.GetExpense(c.Request.Context(), userID, expenseID)
	if err != nil {
		common.HandleError(c, err, "failed to get expense")
		return
	}

	common.SuccessResponse(c, expense)
}

// Update edits an expense
// PUT /api/v1/expenses/:id
func (h *Handler) Update(c *gin.Context) {
	userID, expenseID, ok := h.ids(c)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	expense, err := h.service.UpdateExpense(c.Request.Context(), userID, expenseID, &req)
	if err != nil {
		common.HandleError(c, err, "failed to update expense")
		return
	}

	common.SuccessResponse(c, expense)
}

// Delete removes an expense
// DELETE /api/v1/expenses/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, expenseID, ok := h.ids(c)
	if !ok {
		return
	}

	if err := h.service.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		common.HandleError(c, err, "failed to delete expense")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusOK, nil, i18n.Translate("expense.deleted", c.GetHeader("Accept-Language")))
}

// Currencies lists the original currencies the caller has used
// GET /api/v1/expenses/currencies
func (h *Handler) Currencies(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	currencies, err := h.service.GetCurrencies(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err, "failed to get currencies")
		return
	}

	common.SuccessResponse(c, gin.H{"currencies": currencies})
}

// Analytics returns per-category totals
// GET /api/v1/expenses/analytics?currency=EUR&from=2024-01-01&to=2024-03-31
func (h *Handler) Analytics(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var q AnalyticsQuery
	if !middleware.ValidateAndBindQuery(c, &q) {
		return
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid date range")
		return
	}

	result, err := h.service.GetAnalytics(c.Request.Context(), userID, q.Currency, from, to)
	if err != nil {
		common.HandleError(c, err, "failed to get analytics")
		return
	}

	common.SuccessResponse(c, result)
}

// RegisterRoutes registers expense routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	r := rg.Group("/expenses")
	{
		r.POST("", h.Create)
		r.GET("", h.List)
		r.GET("/analytics", h.Analytics)
		r.GET("/currencies", h.Currencies)
		r.GET("/:id", h.Get)
		r.PUT("/:id", h.Update)
		r.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid expense id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, expenseID, true
}

// parseRange parses inclusive YYYY-MM-DD bounds. The upper bound becomes
// the start of the following day.
func parseRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, nil, err
		}
		next := t.AddDate(0, 0, 1)
		to = &next
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, errInvalidRange
	}
	return from, to, nil
}
