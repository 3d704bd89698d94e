package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/models"
)

// RepositoryInterface defines the interface for user repository operations
type RepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// ExpenseStore is the slice of the expense repository the migration needs
type ExpenseStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Expense, error)
	UpdateAmount(ctx context.Context, id uuid.UUID, amount float64, updatedAt time.Time) error
}

// RateConverter converts amounts between currencies. It never fails: a
// missing rate yields the amount unchanged.
type RateConverter interface {
	ConvertAmount(ctx context.Context, amount float64, from, to string, date *time.Time) float64
}

// ServiceInterface defines the interface for user service operations
type ServiceInterface interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *UpdatePreferencesRequest) (*PreferencesResult, error)
	UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (*MigrationReport, error)
}
