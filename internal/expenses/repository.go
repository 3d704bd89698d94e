package expenses

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/models"
)

const expenseColumns = `id, user_id, description, amount, original_amount, original_currency, category, date, created_at, updated_at`

// scanExpense scans a row into an Expense. The category column is JSONB and
// NULL while categorization is pending.
func scanExpense(scan func(dest ...interface{}) error) (*models.Expense, error) {
	e := &models.Expense{}
	var category []byte
	err := scan(
		&e.ID, &e.UserID, &e.Description,
		&e.Amount, &e.OriginalAmount, &e.OriginalCurrency,
		&category,
		&e.Date, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(category) > 0 {
		var c models.Category
		if err := json.Unmarshal(category, &c); err != nil {
			return nil, fmt.Errorf("failed to decode category of expense %s: %w", e.ID, err)
		}
		if c.Tags == nil {
			c.Tags = []string{}
		}
		e.Category = &c
	}
	return e, nil
}

func encodeCategory(c *models.Category) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Repository handles expense data access
type Repository struct {
	db database.DB
}

// NewRepository creates a new expense repository
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense
func (r *Repository) Create(ctx context.Context, e *models.Expense) error {
	category, err := encodeCategory(e.Category)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.Exec(ctx, query,
		e.ID, e.UserID, e.Description,
		e.Amount, e.OriginalAmount, e.OriginalCurrency,
		category,
		e.Date, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// FindByID returns an expense. A missing row yields pgx.ErrNoRows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	row := r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	return scanExpense(row.Scan)
}

// Update overwrites every mutable column of an expense. Last writer wins.
func (r *Repository) Update(ctx context.Context, e *models.Expense) error {
	category, err := encodeCategory(e.Category)
	if err != nil {
		return err
	}

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, original_amount = $4, original_currency = $5,
			category = $6, date = $7, updated_at = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		e.ID, e.Description, e.Amount, e.OriginalAmount, e.OriginalCurrency,
		category, e.Date, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateAmount rewrites the display amount only, leaving the category and
// the original amount untouched
func (r *Repository) UpdateAmount(ctx context.Context, id uuid.UUID, amount float64, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE expenses SET amount = $2, updated_at = $3 WHERE id = $1`, id, amount, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update expense amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an expense
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// FindByUserID returns a page of the user's expenses, newest first
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Expense, error) {
	return r.List(ctx, userID, nil, limit, offset)
}

// buildFilters constructs the WHERE clause and args for a listing
func buildFilters(userID uuid.UUID, filter *models.ExpenseFilter) (string, []interface{}, int) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIdx := 2

	if filter != nil {
		if filter.From != nil {
			where = append(where, fmt.Sprintf("date >= $%d", argIdx))
			args = append(args, *filter.From)
			argIdx++
		}
		if filter.To != nil {
			where = append(where, fmt.Sprintf("date < $%d", argIdx))
			args = append(args, *filter.To)
			argIdx++
		}
		if filter.Category != "" {
			if strings.EqualFold(filter.Category, PendingCategoryLabel) {
				where = append(where, "category IS NULL")
			} else {
				where = append(where, fmt.Sprintf("LOWER(category->>'primary') = LOWER($%d)", argIdx))
				args = append(args, filter.Category)
				argIdx++
			}
		}
		if filter.Search != "" {
			where = append(where, fmt.Sprintf("description ILIKE $%d", argIdx))
			args = append(args, "%"+filter.Search+"%")
			argIdx++
		}
	}

	return strings.Join(where, " AND "), args, argIdx
}

// List returns a filtered page of the user's expenses, newest first
func (r *Repository) List(ctx context.Context, userID uuid.UUID, filter *models.ExpenseFilter, limit, offset int) ([]*models.Expense, error) {
	whereClause, args, argIdx := buildFilters(userID, filter)
	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		expenseColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Count returns how many expenses match filter
func (r *Repository) Count(ctx context.Context, userID uuid.UUID, filter *models.ExpenseFilter) (int64, error) {
	whereClause, args, _ := buildFilters(userID, filter)

	var total int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM expenses WHERE %s`, whereClause), args...).Scan(&total)
	return total, err
}

// FindRecentCategorized returns the user's latest (description, category)
// pairs, skipping pending and fallback categories
func (r *Repository) FindRecentCategorized(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error) {
	query := `
		SELECT description, category
		FROM expenses
		WHERE user_id = $1 AND category IS NOT NULL AND category->>'primary' <> $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, userID, models.UncategorizedLabel, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var entry models.HistoryEntry
		var raw []byte
		if err := rows.Scan(&entry.Description, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &entry.Category); err != nil {
			continue
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// GetDistinctCurrencies returns the original currencies the user has used
func (r *Repository) GetDistinctCurrencies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT original_currency FROM expenses WHERE user_id = $1 ORDER BY original_currency`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	currencies := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		currencies = append(currencies, strings.TrimSpace(code))
	}
	return currencies, rows.Err()
}

// GetAnalyticsSummary totals original amounts per (original currency,
// primary category). Pending expenses are grouped under PendingCategoryLabel.
func (r *Repository) GetAnalyticsSummary(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.ExpenseSummaryRow, error) {
	whereClause, args, _ := buildFilters(userID, &models.ExpenseFilter{From: from, To: to})
	query := fmt.Sprintf(`
		SELECT original_currency, COALESCE(category->>'primary', '%s'), SUM(original_amount), COUNT(*)
		FROM expenses
		WHERE %s
		GROUP BY 1, 2
		ORDER BY 1, 2`, PendingCategoryLabel, whereClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make([]models.ExpenseSummaryRow, 0)
	for rows.Next() {
		var row models.ExpenseSummaryRow
		if err := rows.Scan(&row.Currency, &row.Category, &row.Total, &row.Count); err != nil {
			return nil, err
		}
		row.Currency = strings.TrimSpace(row.Currency)
		summary = append(summary, row)
	}
	return summary, rows.Err()
}
