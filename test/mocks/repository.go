package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of the user repository
type MockUserRepository struct {
	mock.Mock
}

// FindByID mocks getting a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Update mocks updating a user
func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockExpenseRepository is a mock implementation of the expense repository
type MockExpenseRepository struct {
	mock.Mock
}

// Create mocks inserting an expense
func (m *MockExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

// FindByID mocks getting an expense by ID
func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

// Update mocks persisting an expense
func (m *MockExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

// UpdateAmount mocks rewriting an expense's display amount
func (m *MockExpenseRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount float64, updatedAt time.Time) error {
	args := m.Called(ctx, id, amount, updatedAt)
	return args.Error(0)
}

// Delete mocks deleting an expense
func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FindByUserID mocks listing a user's expenses
func (m *MockExpenseRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Expense, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

// List mocks a filtered listing
func (m *MockExpenseRepository) List(ctx context.Context, userID uuid.UUID, filter *models.ExpenseFilter, limit, offset int) ([]*models.Expense, error) {
	args := m.Called(ctx, userID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

// Count mocks counting a filtered listing
func (m *MockExpenseRepository) Count(ctx context.Context, userID uuid.UUID, filter *models.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// FindRecentCategorized mocks loading categorization history
func (m *MockExpenseRepository) FindRecentCategorized(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}

// GetDistinctCurrencies mocks listing the original currencies in use
func (m *MockExpenseRepository) GetDistinctCurrencies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// GetAnalyticsSummary mocks the grouped totals query
func (m *MockExpenseRepository) GetAnalyticsSummary(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.ExpenseSummaryRow, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExpenseSummaryRow), args.Error(1)
}
