package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/models"
)

// UpdatePreferencesRequest is the body of PUT /users/me/preferences. Nil
// fields keep the stored value.
type UpdatePreferencesRequest struct {
	Name     *string `json:"name" binding:"omitempty,notblank,max=100"`
	Language *string `json:"language" binding:"omitempty,min=2,max=10"`
	Currency *string `json:"currency" binding:"omitempty,currency"`
}

// UpdateCurrencyRequest is the body of PUT /users/me/currency
type UpdateCurrencyRequest struct {
	Currency string `json:"currency" binding:"required,currency"`
}

// MigrationFailure is an expense that could not be recalculated
type MigrationFailure struct {
	ExpenseID uuid.UUID `json:"expense_id"`
	Error     string    `json:"error"`
}

// MigrationReport describes one run of the currency migration. Expenses in
// Failed keep the amount they had before the run; nothing is rolled back.
type MigrationReport struct {
	UserID       uuid.UUID          `json:"user_id"`
	FromCurrency string             `json:"from_currency"`
	ToCurrency   string             `json:"to_currency"`
	Total        int                `json:"total"`
	Restored     int                `json:"restored"`
	Converted    int                `json:"converted"`
	Failed       []MigrationFailure `json:"failed"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

// Partial reports whether some expenses were left untouched
func (r *MigrationReport) Partial() bool {
	return r != nil && len(r.Failed) > 0
}

// Updated is the number of expenses written successfully
func (r *MigrationReport) Updated() int {
	if r == nil {
		return 0
	}
	return r.Restored + r.Converted
}

// PreferencesResult is returned by a preferences update. Migration is set
// only when the currency was part of the update.
type PreferencesResult struct {
	User      *models.User     `json:"user"`
	Migration *MigrationReport `json:"migration,omitempty"`
}
