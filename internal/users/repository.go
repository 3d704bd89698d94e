package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/models"
)

// Repository handles user data access
type Repository struct {
	db database.DB
}

// NewRepository creates a new user repository
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// FindByID retrieves a user by ID. A missing row yields an error wrapping
// pgx.ErrNoRows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, name, currency, language, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Currency,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Update persists the user's profile and preferences
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, currency = $2, language = $3, updated_at = $4
		WHERE id = $5
	`

	tag, err := r.db.Exec(ctx, query,
		user.Name,
		user.Currency,
		user.Language,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
