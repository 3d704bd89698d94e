package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/middleware"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/stretchr/testify/require"
)

// CreateTestUser creates a test user with the given display currency
func CreateTestUser(currency string) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Email:     "test@example.com",
		Name:      "Test User",
		Currency:  currency,
		Language:  "en",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreateTestExpense creates a categorized expense whose display amount
// equals the amount it was entered with
func CreateTestExpense(userID uuid.UUID, amount float64, currency string) *models.Expense {
	now := time.Now().UTC()
	return &models.Expense{
		ID:               uuid.New(),
		UserID:           userID,
		Description:      "Lunch at the office",
		Amount:           amount,
		OriginalAmount:   amount,
		OriginalCurrency: currency,
		Category:         CreateTestCategory("Food & Dining"),
		Date:             now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CreateTestCategory creates a confident model-assigned category
func CreateTestCategory(primary string) *models.Category {
	return &models.Category{
		Primary:    primary,
		Tags:       []string{},
		Confidence: 0.9,
	}
}

// CreateTestCategoryOption creates a category option. A nil owner makes it
// a default.
func CreateTestCategoryOption(owner *uuid.UUID, name string) models.CategoryOption {
	return models.CategoryOption{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      name,
		IsDefault: owner == nil,
		CreatedAt: time.Now(),
	}
}

// CreateTestToken signs an HS256 access token for userID
func CreateTestToken(t *testing.T, secret string, userID uuid.UUID) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: userID,
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
