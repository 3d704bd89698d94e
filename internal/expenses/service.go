package expenses

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/expense-tracker/internal/categorization"
	"github.com/richxcame/expense-tracker/internal/rates"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/richxcame/expense-tracker/pkg/i18n"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/richxcame/expense-tracker/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service orchestrates the expense lifecycle
type Service struct {
	repo        RepositoryInterface
	users       UserReader
	categories  CategoryLister
	categorizer Categorizer
	rates       RateConverter
	queue       Enqueuer
	now         func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithEnqueuer replaces the built-in categorization queue
func WithEnqueuer(q Enqueuer) Option {
	return func(s *Service) { s.queue = q }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new expense service. Unless WithEnqueuer is given, the
// service owns a CategorizationQueue sized by cfg; start it with Queue().Start().
func NewService(repo RepositoryInterface, users UserReader, categories CategoryLister, categorizer Categorizer, rateSvc RateConverter, cfg *config.CategorizerConfig, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		users:       users,
		categories:  categories,
		categorizer: categorizer,
		rates:       rateSvc,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.queue == nil {
		workers, size := 0, 0
		if cfg != nil {
			workers, size = cfg.Workers, cfg.QueueSize
		}
		s.queue = NewCategorizationQueue(workers, size, s.processJob)
	}
	return s
}

// Queue returns the built-in categorization queue, or nil when an external
// Enqueuer was supplied
func (s *Service) Queue() *CategorizationQueue {
	q, _ := s.queue.(*CategorizationQueue)
	return q
}

// CreateExpense stores a new pending expense and schedules its
// categorization. The returned expense has no category yet.
func (s *Service) CreateExpense(ctx context.Context, userID uuid.UUID, req *CreateExpenseRequest) (*models.Expense, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	description, err := cleanDescription(req.Description)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	currency := user.DisplayCurrency()
	if req.Currency != "" {
		if currency, err = cleanCurrency(req.Currency); err != nil {
			return nil, err
		}
	}

	now := s.now()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	amount := round2(req.Amount)
	expense := &models.Expense{
		ID:               uuid.New(),
		UserID:           userID,
		Description:      description,
		Amount:           amount,
		OriginalAmount:   amount,
		OriginalCurrency: currency,
		Category:         nil,
		Date:             date,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, common.NewInternalError("failed to create expense", err)
	}

	queued := s.queue.Enqueue(ctx, categorizationJob{
		ExpenseID:   expense.ID,
		UserID:      userID,
		Description: description,
		Amount:      amount,
	})

	logger.WithContext(ctx).Info("expense created",
		zap.String("expense_id", expense.ID.String()),
		zap.String("currency", currency),
		zap.Bool("categorization_queued", queued),
	)
	return expense, nil
}

// processJob is the background half of CreateExpense. It re-reads the
// expense and writes only its category.
func (s *Service) processJob(ctx context.Context, job categorizationJob) error {
	available, history := s.categorizationContext(ctx, job.UserID)
	category := s.categorizer.Categorize(ctx, job.UserID, job.Description, job.Amount, available, history)

	current, err := s.repo.FindByID(ctx, job.ExpenseID)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.WithContext(ctx).Debug("expense deleted before categorization finished", zap.String("expense_id", job.ExpenseID.String()))
		return nil
	}
	if err != nil {
		return err
	}
	if current.UserID != job.UserID || current.Description != job.Description {
		return nil
	}
	if current.Category != nil && current.Category.Rationale == models.ManualRationale {
		return nil
	}

	current.Category = &category
	current.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	logger.WithContext(ctx).Debug("expense categorized",
		zap.String("expense_id", current.ID.String()),
		zap.String("category", category.Primary),
		zap.Float64("confidence", category.Confidence),
	)
	return nil
}

// GetExpense returns an expense owned by userID
func (s *Service) GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	return s.loadOwned(ctx, userID, expenseID)
}

// UpdateExpense rebuilds an expense from the request, the stored values and
// defaults, in that order. A manual category wins; otherwise a changed
// description or amount is re-categorized synchronously.
func (s *Service) UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, req *UpdateExpenseRequest) (*models.Expense, error) {
	existing, err := s.loadOwned(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	description := existing.Description
	if req.Description != nil {
		if description, err = cleanDescription(*req.Description); err != nil {
			return nil, err
		}
	}

	date := existing.Date
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	if date.IsZero() {
		date = s.now()
	}

	originalAmount := existing.OriginalAmount
	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
		originalAmount = round2(*req.Amount)
	}

	originalCurrency := models.NormalizeCurrency(existing.OriginalCurrency)
	if req.Currency != nil {
		if originalCurrency, err = cleanCurrency(*req.Currency); err != nil {
			return nil, err
		}
	}
	if originalCurrency == "" {
		originalCurrency = user.DisplayCurrency()
	}

	displayCurrency := user.DisplayCurrency()
	amount := originalAmount
	if originalCurrency != displayCurrency {
		amount = s.rates.ConvertAmount(ctx, originalAmount, originalCurrency, displayCurrency, nil)
	}

	var category *models.Category
	switch {
	case req.Category != nil:
		manual := categorization.ManualCategory(req.Category.Primary, req.Category.Secondary, req.Category.Tags)
		if manual.Primary == "" {
			return nil, common.NewBadRequestError("category primary label is required", nil)
		}
		s.categorizer.Remember(ctx, userID, description, manual)
		category = &manual
	case description != existing.Description || originalAmount != existing.OriginalAmount:
		available, history := s.categorizationContext(ctx, userID)
		auto := s.categorizer.Categorize(ctx, userID, description, originalAmount, available, history)
		category = &auto
	default:
		category = existing.Category
	}

	updated := &models.Expense{
		ID:               existing.ID,
		UserID:           existing.UserID,
		Description:      description,
		Amount:           amount,
		OriginalAmount:   originalAmount,
		OriginalCurrency: originalCurrency,
		Category:         category,
		Date:             date,
		CreatedAt:        existing.CreatedAt,
		UpdatedAt:        s.now(),
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("expense not found", err)
		}
		return nil, common.NewInternalError("failed to update expense", err)
	}
	return updated, nil
}

// DeleteExpense removes an expense owned by userID
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, expenseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, expenseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("expense not found", err)
		}
		return common.NewInternalError("failed to delete expense", err)
	}
	return nil
}

// ListExpenses returns a page of expenses with their original amounts
// converted into targetCurrency (the user's currency when empty). An
// expense whose rate is unavailable keeps its original amount and currency.
func (s *Service) ListExpenses(ctx context.Context, userID uuid.UUID, targetCurrency string, filter *models.ExpenseFilter, limit, offset int) ([]ExpenseView, int64, error) {
	target, err := s.resolveTarget(ctx, userID, targetCurrency)
	if err != nil {
		return nil, 0, err
	}

	items, err := s.repo.List(ctx, userID, filter, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list expenses", err)
	}
	total, err := s.repo.Count(ctx, userID, filter)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to count expenses", err)
	}

	froms := make([]string, 0, len(items))
	for _, e := range items {
		froms = append(froms, e.OriginalCurrency)
	}
	rateMap := s.batchRates(ctx, froms, target)

	views := make([]ExpenseView, 0, len(items))
	for _, e := range items {
		views = append(views, buildView(e, target, rateMap))
	}
	return views, total, nil
}

// GetCurrencies lists the original currencies used by the user
func (s *Service) GetCurrencies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	currencies, err := s.repo.GetDistinctCurrencies(ctx, userID)
	if err != nil {
		return nil, common.NewInternalError("failed to load currencies", err)
	}
	return currencies, nil
}

// GetAnalytics totals the user's spending per category in targetCurrency.
// Groups whose currency has no rate are left out of the totals and listed
// in Unconverted.
func (s *Service) GetAnalytics(ctx context.Context, userID uuid.UUID, targetCurrency string, from, to *time.Time) (*Analytics, error) {
	target, err := s.resolveTarget(ctx, userID, targetCurrency)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetAnalyticsSummary(ctx, userID, from, to)
	if err != nil {
		return nil, common.NewInternalError("failed to load analytics", err)
	}

	froms := make([]string, 0, len(rows))
	for _, row := range rows {
		froms = append(froms, row.Currency)
	}
	rateMap := s.batchRates(ctx, froms, target)

	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)
	unconverted := make(map[string]struct{})
	grand := decimal.Zero
	count := 0

	for _, row := range rows {
		currency := models.NormalizeCurrency(row.Currency)
		amount := decimal.NewFromFloat(row.Total)
		if currency != target {
			rate, ok := rateMap[currency]
			if !ok {
				unconverted[currency] = struct{}{}
				continue
			}
			amount = amount.Mul(decimal.NewFromFloat(rate))
		}

		b, ok := buckets[row.Category]
		if !ok {
			b = &bucket{}
			buckets[row.Category] = b
		}
		b.total = b.total.Add(amount)
		b.count += row.Count
		grand = grand.Add(amount)
		count += row.Count
	}

	result := &Analytics{
		Currency:    target,
		From:        from,
		To:          to,
		Total:       grand.Round(2).InexactFloat64(),
		Count:       count,
		Categories:  make([]CategoryTotal, 0, len(buckets)),
		Unconverted: make([]string, 0, len(unconverted)),
	}
	for name, b := range buckets {
		share := 0.0
		if grand.IsPositive() {
			share = b.total.Div(grand).Round(4).InexactFloat64()
		}
		result.Categories = append(result.Categories, CategoryTotal{
			Category: name,
			Total:    b.total.Round(2).InexactFloat64(),
			Count:    b.count,
			Share:    share,
		})
	}
	sort.Slice(result.Categories, func(i, j int) bool {
		if result.Categories[i].Total != result.Categories[j].Total {
			return result.Categories[i].Total > result.Categories[j].Total
		}
		return result.Categories[i].Category < result.Categories[j].Category
	})
	for code := range unconverted {
		result.Unconverted = append(result.Unconverted, code)
	}
	sort.Strings(result.Unconverted)

	return result, nil
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalError("failed to load user", err)
	}
	return user, nil
}

// loadOwned reports another user's expense exactly like a missing one
func (s *Service) loadOwned(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("expense not found", err)
		}
		return nil, common.NewInternalError("failed to load expense", err)
	}
	if expense.UserID != userID {
		return nil, common.NewNotFoundError("expense not found", nil)
	}
	return expense, nil
}

// categorizationContext loads the options and few-shot history for the
// model. Failures degrade to an empty context.
func (s *Service) categorizationContext(ctx context.Context, userID uuid.UUID) ([]models.CategoryOption, []models.HistoryEntry) {
	available, err := s.categories.ListAvailable(ctx, userID)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to load categories for categorization", zap.Error(err))
		available = nil
	}
	history, err := s.repo.FindRecentCategorized(ctx, userID, categorization.HistoryLimit)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to load categorization history", zap.Error(err))
		history = nil
	}
	return available, history
}

func (s *Service) resolveTarget(ctx context.Context, userID uuid.UUID, requested string) (string, error) {
	if strings.TrimSpace(requested) != "" {
		return cleanCurrency(requested)
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.DisplayCurrency(), nil
}

// batchRates fetches rates for the distinct currencies in froms that differ
// from target
func (s *Service) batchRates(ctx context.Context, froms []string, target string) map[string]float64 {
	seen := make(map[string]struct{})
	distinct := make([]string, 0, len(froms))
	for _, code := range froms {
		code = models.NormalizeCurrency(code)
		if code == target {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		distinct = append(distinct, code)
	}
	if len(distinct) == 0 {
		return map[string]float64{}
	}
	sort.Strings(distinct)
	return s.rates.GetBatchRates(ctx, distinct, target, nil)
}

func buildView(e *models.Expense, target string, rateMap map[string]float64) ExpenseView {
	origin := models.NormalizeCurrency(e.OriginalCurrency)
	view := ExpenseView{
		Expense:         e,
		DisplayAmount:   e.OriginalAmount,
		DisplayCurrency: origin,
		Converted:       origin == target,
		CategoryPending: e.IsPending(),
	}
	if origin != target {
		if rate, ok := rateMap[origin]; ok {
			view.DisplayAmount = rates.ApplyRate(e.OriginalAmount, rate)
			view.DisplayCurrency = target
			view.Converted = true
		}
	}
	view.FormattedAmount = i18n.FormatAmount(view.DisplayAmount, view.DisplayCurrency)
	view.FormattedOrigin = i18n.FormatAmount(e.OriginalAmount, origin)
	return view
}

func cleanDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", common.NewBadRequestError("description is required", nil)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", common.NewBadRequestError("description is too long", nil)
	}
	return description, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || round2(amount) <= 0 {
		return common.NewBadRequestError("amount must be greater than zero", nil)
	}
	return nil
}

func cleanCurrency(raw string) (string, error) {
	code := models.NormalizeCurrency(raw)
	if !validation.IsCurrencyCode(code) {
		return "", common.NewBadRequestError("invalid currency code", nil)
	}
	return code, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
