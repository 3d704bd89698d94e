package categories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/models"
)

const categoryColumns = `id, user_id, name, color, icon, is_default, created_at`

func scanCategory(scan func(dest ...interface{}) error) (models.CategoryOption, error) {
	var c models.CategoryOption
	err := scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.IsDefault, &c.CreatedAt)
	return c, err
}

// Repository handles category data access
type Repository struct {
	db database.DB
}

// NewRepository creates a new category repository
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// FindDefaults returns the built-in categories shared by every user
func (r *Repository) FindDefaults(ctx context.Context) ([]models.CategoryOption, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id IS NULL ORDER BY name`)
}

// FindByUserID returns the categories created by userID
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.CategoryOption, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name`, userID)
}

// FindByID returns a category. A missing row yields pgx.ErrNoRows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CategoryOption, error) {
	row := r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row.Scan)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a category
func (r *Repository) Create(ctx context.Context, option *models.CategoryOption) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, icon, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		option.ID, option.UserID, option.Name, option.Color, option.Icon, option.IsDefault, option.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Delete removes a category
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]models.CategoryOption, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := make([]models.CategoryOption, 0)
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		options = append(options, c)
	}
	return options, rows.Err()
}
