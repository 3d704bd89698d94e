package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/models"
)

const (
	// MaxDescriptionLength bounds expense descriptions
	MaxDescriptionLength = 500
	// PendingCategoryLabel groups expenses still waiting for a category
	PendingCategoryLabel = "pending"
)

// CreateExpenseRequest is the body of POST /expenses. Currency defaults to
// the user's display currency and Date to now.
type CreateExpenseRequest struct {
	Description string     `json:"description" binding:"required,notblank,max=500"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Currency    string     `json:"currency" binding:"omitempty,currency"`
	Date        *time.Time `json:"date"`
}

// ManualCategoryInput is a category chosen by the user
type ManualCategoryInput struct {
	Primary   string   `json:"primary" binding:"required,notblank,max=100"`
	Secondary string   `json:"secondary" binding:"omitempty,max=100"`
	Tags      []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// UpdateExpenseRequest is the body of PUT /expenses/:id. Nil fields keep the
// stored value.
type UpdateExpenseRequest struct {
	Description *string              `json:"description" binding:"omitempty,notblank,max=500"`
	Amount      *float64             `json:"amount" binding:"omitempty,gt=0"`
	Currency    *string              `json:"currency" binding:"omitempty,currency"`
	Date        *time.Time           `json:"date"`
	Category    *ManualCategoryInput `json:"category"`
}

// ListQuery holds the query string of GET /expenses
type ListQuery struct {
	Currency string `form:"currency" binding:"omitempty,currency"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Category string `form:"category" binding:"omitempty,max=100"`
	Search   string `form:"search" binding:"omitempty,max=200"`
}

// AnalyticsQuery holds the query string of GET /expenses/analytics
type AnalyticsQuery struct {
	Currency string `form:"currency" binding:"omitempty,currency"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// ExpenseView is an expense as shown in a listing, with its original amount
// converted into the requested currency at read time
type ExpenseView struct {
	*models.Expense
	DisplayAmount   float64 `json:"display_amount"`
	DisplayCurrency string  `json:"display_currency"`
	Converted       bool    `json:"converted"`
	FormattedAmount string  `json:"formatted_amount"`
	FormattedOrigin string  `json:"formatted_original_amount"`
	CategoryPending bool    `json:"category_pending"`
}

// CategoryTotal is one slice of an analytics breakdown
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// Analytics summarizes spending in a single currency
type Analytics struct {
	Currency    string          `json:"currency"`
	From        *time.Time      `json:"from,omitempty"`
	To          *time.Time      `json:"to,omitempty"`
	Total       float64         `json:"total"`
	Count       int             `json:"count"`
	Categories  []CategoryTotal `json:"categories"`
	Unconverted []string        `json:"unconverted_currencies"`
}

// categorizationJob carries only identifiers and the text to classify. The
// worker re-reads the expense before writing.
type categorizationJob struct {
	ExpenseID   uuid.UUID
	UserID      uuid.UUID
	Description string
	Amount      float64
}
