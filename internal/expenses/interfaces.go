package expenses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/models"
)

// RepositoryInterface defines the expense persistence operations
type RepositoryInterface interface {
	Create(ctx context.Context, expense *models.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Expense, error)
	List(ctx context.Context, userID uuid.UUID, filter *models.ExpenseFilter, limit, offset int) ([]*models.Expense, error)
	Count(ctx context.Context, userID uuid.UUID, filter *models.ExpenseFilter) (int64, error)
	FindRecentCategorized(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error)
	GetDistinctCurrencies(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetAnalyticsSummary(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.ExpenseSummaryRow, error)
}

// UserReader loads the owner of an expense
type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CategoryLister returns the categories a user can be assigned
type CategoryLister interface {
	ListAvailable(ctx context.Context, userID uuid.UUID) ([]models.CategoryOption, error)
}

// Categorizer classifies descriptions and remembers manual choices
type Categorizer interface {
	Categorize(ctx context.Context, userID uuid.UUID, description string, amount float64, available []models.CategoryOption, history []models.HistoryEntry) models.Category
	Remember(ctx context.Context, userID uuid.UUID, description string, category models.Category)
}

// RateConverter is the subset of the exchange rate service used here
type RateConverter interface {
	ConvertAmount(ctx context.Context, amount float64, from, to string, date *time.Time) float64
	GetBatchRates(ctx context.Context, froms []string, to string, date *time.Time) map[string]float64
}

// Enqueuer schedules background categorization
type Enqueuer interface {
	Enqueue(ctx context.Context, job categorizationJob) bool
}

// ServiceInterface is consumed by the HTTP handler
type ServiceInterface interface {
	CreateExpense(ctx context.Context, userID uuid.UUID, req *CreateExpenseRequest) (*models.Expense, error)
	GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, req *UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error
	ListExpenses(ctx context.Context, userID uuid.UUID, targetCurrency string, filter *models.ExpenseFilter, limit, offset int) ([]ExpenseView, int64, error)
	GetCurrencies(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetAnalytics(ctx context.Context, userID uuid.UUID, targetCurrency string, from, to *time.Time) (*Analytics, error)
}
