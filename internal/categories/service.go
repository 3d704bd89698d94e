package categories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/models"
	"go.uber.org/zap"
)

// Service handles category business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new category service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ListAvailable returns the user's own categories followed by the defaults
func (s *Service) ListAvailable(ctx context.Context, userID uuid.UUID) ([]models.CategoryOption, error) {
	custom, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, common.NewInternalError("failed to load categories", err)
	}
	defaults, err := s.repo.FindDefaults(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to load default categories", err)
	}

	merged := make([]models.CategoryOption, 0, len(custom)+len(defaults))
	merged = append(merged, custom...)
	return append(merged, defaults...), nil
}

// CreateCategory adds a custom category for userID. Names are unique per
// user, case-insensitively, and may not shadow a default.
func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, req *CreateCategoryRequest) (*models.CategoryOption, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewBadRequestError("category name is required", nil)
	}

	existing, err := s.ListAvailable(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, opt := range existing {
		if strings.EqualFold(opt.Name, name) {
			return nil, common.NewConflictError("category already exists")
		}
	}

	owner := userID
	option := &models.CategoryOption{
		ID:        uuid.New(),
		UserID:    &owner,
		Name:      name,
		Color:     req.Color,
		Icon:      req.Icon,
		IsDefault: false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, option); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, common.NewConflictError("category already exists")
		}
		return nil, common.NewInternalError("failed to create category", err)
	}

	logger.WithContext(ctx).Info("category created",
		zap.String("category_id", option.ID.String()),
		zap.String("name", option.Name),
	)
	return option, nil
}

// DeleteCategory removes a custom category. Defaults cannot be deleted and
// another user's category is reported as not found.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	option, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("category not found", err)
		}
		return common.NewInternalError("failed to load category", err)
	}

	if option.IsDefault {
		return common.NewForbiddenError("default categories cannot be deleted")
	}
	if !option.IsOwnedBy(userID) {
		return common.NewNotFoundError("category not found", nil)
	}

	if err := s.repo.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("category not found", err)
		}
		return common.NewInternalError("failed to delete category", err)
	}
	return nil
}
