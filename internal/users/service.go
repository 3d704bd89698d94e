package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/i18n"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/richxcame/expense-tracker/pkg/resilience"
	"github.com/richxcame/expense-tracker/pkg/validation"
	"go.uber.org/zap"
)

const defaultPageSize = 1_000_000

// Service handles user profile and preference business logic
type Service struct {
	repo     RepositoryInterface
	expenses ExpenseStore
	rates    RateConverter
	pageSize int
	retry    resilience.RetryConfig
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRetryConfig sets the retry policy used for each expense write
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

// NewService creates a new user service
func NewService(repo RepositoryInterface, expenses ExpenseStore, rates RateConverter, cfg *config.MigrationConfig, opts ...Option) *Service {
	pageSize := defaultPageSize
	if cfg != nil && cfg.PageSize > 0 {
		pageSize = cfg.PageSize
	}

	s := &Service{
		repo:     repo,
		expenses: expenses,
		rates:    rates,
		pageSize: pageSize,
		retry: resilience.RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    100 * time.Millisecond,
			MaxBackoff:        time.Second,
			BackoffMultiplier: 2.0,
			EnableJitter:      true,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.retry.RetryableChecker = database.IsRetryable
	s.retry.Name = "currency migration update"
	return s
}

// GetProfile returns the user
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.loadUser(ctx, userID)
}

// UpdatePreferences updates name and language. A currency change is saved
// together with them and then triggers the expense migration.
func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *UpdatePreferencesRequest) (*PreferencesResult, error) {
	if req == nil || (req.Name == nil && req.Language == nil && req.Currency == nil) {
		return nil, common.NewBadRequestError("no preferences to update", nil)
	}

	var currency string
	if req.Currency != nil {
		code, err := parseCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		currency = code
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := user.DisplayCurrency()

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.NewBadRequestError("name cannot be blank", nil)
		}
		user.Name = name
	}
	if req.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*req.Language))
		if !i18n.Supported(lang) {
			return nil, common.NewBadRequestError("unsupported language", nil)
		}
		user.Language = lang
	}
	if req.Currency != nil {
		user.Currency = currency
	}
	user.UpdatedAt = s.now()

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	result := &PreferencesResult{User: user}
	if req.Currency == nil {
		logger.WithContext(ctx).Info("preferences updated", zap.String("user_id", userID.String()))
		return result, nil
	}

	report, err := s.migrate(ctx, user.ID, from, currency)
	if err != nil {
		return nil, err
	}
	result.Migration = report
	return result, nil
}

// UpdateCurrency saves the user's new display currency and recalculates the
// display amount of every expense they own. The user is saved first and is
// not reverted if the migration fails.
func (s *Service) UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (*MigrationReport, error) {
	code, err := parseCurrency(currency)
	if err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := user.DisplayCurrency()

	user.Currency = code
	user.UpdatedAt = s.now()
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	return s.migrate(ctx, user.ID, from, code)
}

// migrate rewrites the display amount of each of the user's expenses, one at
// a time. Other columns are never written. Expenses already in the target
// currency get their original amount back exactly. Failed writes are reported
// and skipped.
func (s *Service) migrate(ctx context.Context, userID uuid.UUID, from, to string) (*MigrationReport, error) {
	// the run is not tied to the lifetime of the request that triggered it
	ctx = context.WithoutCancel(ctx)
	log := logger.WithContext(ctx).With(
		zap.String("user_id", userID.String()),
		zap.String("from", from),
		zap.String("to", to),
	)

	report := &MigrationReport{
		UserID:       userID,
		FromCurrency: from,
		ToCurrency:   to,
		Failed:       []MigrationFailure{},
		StartedAt:    s.now(),
	}

	expenses, err := s.expenses.FindByUserID(ctx, userID, s.pageSize, 0)
	if err != nil {
		migrationRuns.WithLabelValues("failed").Inc()
		log.Error("currency saved but expenses could not be loaded", zap.Error(err))
		return nil, common.NewInternalError("currency updated but expenses could not be recalculated", err)
	}
	report.Total = len(expenses)

	for _, expense := range expenses {
		restored := models.NormalizeCurrency(expense.OriginalCurrency) == to
		amount := expense.OriginalAmount
		if !restored {
			amount = s.rates.ConvertAmount(ctx, expense.OriginalAmount, expense.OriginalCurrency, to, nil)
		}

		if err := s.saveAmount(ctx, expense.ID, amount); err != nil {
			migratedExpenses.WithLabelValues("failed").Inc()
			log.Warn("failed to recalculate expense",
				zap.String("expense_id", expense.ID.String()),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, MigrationFailure{ExpenseID: expense.ID, Error: err.Error()})
			continue
		}

		if restored {
			report.Restored++
			migratedExpenses.WithLabelValues("restored").Inc()
		} else {
			report.Converted++
			migratedExpenses.WithLabelValues("converted").Inc()
		}
	}
	report.FinishedAt = s.now()

	if report.Partial() {
		migrationRuns.WithLabelValues("partial").Inc()
		log.Warn("currency migration finished with failures",
			zap.Int("total", report.Total),
			zap.Int("failed", len(report.Failed)),
		)
	} else {
		migrationRuns.WithLabelValues("complete").Inc()
		log.Info("currency migration finished",
			zap.Int("restored", report.Restored),
			zap.Int("converted", report.Converted),
		)
	}

	return report, nil
}

func (s *Service) saveAmount(ctx context.Context, id uuid.UUID, amount float64) error {
	_, err := resilience.Retry(ctx, s.retry, func(ctx context.Context) (interface{}, error) {
		return nil, s.expenses.UpdateAmount(ctx, id, amount, s.now())
	})
	return err
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalError("failed to load user", err)
	}
	return user, nil
}

func (s *Service) saveUser(ctx context.Context, user *models.User) error {
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("user not found", err)
		}
		return common.NewInternalError("failed to update user", err)
	}
	return nil
}

func parseCurrency(code string) (string, error) {
	code = models.NormalizeCurrency(code)
	if !validation.IsCurrencyCode(code) {
		return "", common.NewBadRequestError("invalid currency code", nil)
	}
	return code, nil
}
