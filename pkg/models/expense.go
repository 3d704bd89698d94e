package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCurrency is assigned to users who never picked one
	DefaultCurrency = "USD"
	// UncategorizedLabel is the primary label of the fallback category
	UncategorizedLabel = "uncategorized"
	// ManualRationale marks a category the owner set by hand
	ManualRationale = "manually set"
)

// Category is the classification attached to an expense. It is a value:
// replace it, never mutate a shared one.
type Category struct {
	Primary    string   `json:"primary"`
	Secondary  string   `json:"secondary,omitempty"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale,omitempty"`
}

// IsFallback reports whether c is the low-confidence placeholder returned
// when automatic categorization failed
func (c *Category) IsFallback() bool {
	return c != nil && c.Primary == UncategorizedLabel && c.Confidence == 0
}

// Expense is a single spending record. Amount is expressed in the owner's
// display currency; OriginalAmount/OriginalCurrency are what was entered.
type Expense struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	Description      string    `json:"description" db:"description"`
	Amount           float64   `json:"amount" db:"amount"`
	OriginalAmount   float64   `json:"original_amount" db:"original_amount"`
	OriginalCurrency string    `json:"original_currency" db:"original_currency"`
	Category         *Category `json:"category" db:"category"` // nil while categorization is pending
	Date             time.Time `json:"date" db:"date"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// IsPending reports whether the expense still waits for a category
func (e *Expense) IsPending() bool {
	return e.Category == nil
}

// HistoryEntry is a past (description, category) pair used as a few-shot
// example for the model
type HistoryEntry struct {
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// CategoryOption is a category the user can pick from. Defaults have no owner.
type CategoryOption struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Color     string     `json:"color" db:"color"`
	Icon      string     `json:"icon" db:"icon"`
	IsDefault bool       `json:"is_default" db:"is_default"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// IsOwnedBy reports whether userID created the option
func (o *CategoryOption) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// ExpenseFilter narrows expense listings. Zero values mean "no filter".
type ExpenseFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Search   string
}

// NormalizeCurrency upper-cases and trims a currency code
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ExpenseSummaryRow is one (original currency, category) group of a user's
// expenses, totalled in that currency
type ExpenseSummaryRow struct {
	Currency string  `json:"currency"`
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}
