package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/models"
)

// RepositoryInterface defines the category persistence operations
type RepositoryInterface interface {
	FindDefaults(ctx context.Context) ([]models.CategoryOption, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.CategoryOption, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CategoryOption, error)
	Create(ctx context.Context, option *models.CategoryOption) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceInterface is consumed by the HTTP handler
type ServiceInterface interface {
	ListAvailable(ctx context.Context, userID uuid.UUID) ([]models.CategoryOption, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, req *CreateCategoryRequest) (*models.CategoryOption, error)
	DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error
}
