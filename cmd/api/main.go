package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/richxcame/expense-tracker/internal/categories"
	"github.com/richxcame/expense-tracker/internal/categorization"
	"github.com/richxcame/expense-tracker/internal/expenses"
	"github.com/richxcame/expense-tracker/internal/rates"
	"github.com/richxcame/expense-tracker/internal/users"
	"github.com/richxcame/expense-tracker/pkg/cache"
	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/health"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/redis"
	"github.com/richxcame/expense-tracker/pkg/resilience"
	"github.com/richxcame/expense-tracker/pkg/validation"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load("expense-api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("expense api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := validation.RegisterGinValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(pool)
	logger.Info("connected to postgres")

	deps := healthChecks{
		checks: map[string]health.Checker{"database": health.DatabaseChecker(pool)},
	}

	// Connect to Redis. Outside production an unreachable Redis falls back
	// to an in-process store.
	var store cache.Store
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	switch {
	case err == nil:
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
		deps.checks["redis"] = health.RedisChecker(redisClient.Client)
		deps.optional = append(deps.optional, "redis")
		logger.Info("connected to redis")
	case cfg.Server.IsProduction():
		return err
	default:
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		store = cache.NewMemoryStore()
	}

	// Exchange rates
	rateService := rates.NewService(
		rates.NewStoreCache(store),
		rates.NewHTTPFetcherFromConfig(&cfg.Rates),
		rates.WithFreshWindow(cfg.Rates.FreshWindow),
		rates.WithCacheTTL(cfg.Rates.CacheTTL),
	)

	// Categorization
	breakerSettings := resilience.BuildSettings("llm",
		cfg.LLM.BreakerInterval,
		cfg.LLM.BreakerTimeout,
		cfg.LLM.FailureThreshold,
		cfg.LLM.SuccessThreshold,
	)
	categorizer := categorization.NewService(store, categorization.NewChatClient(&cfg.LLM),
		categorization.WithBreaker(resilience.NewCircuitBreaker(breakerSettings, resilience.DegradeWith("llm"))),
		categorization.WithCacheTTL(cfg.LLM.CacheTTL),
	)
	deps.checks["llm"] = health.BreakerChecker("llm", categorizer.Breaker())
	deps.optional = append(deps.optional, "llm")

	// Repositories and services
	userRepo := users.NewRepository(pool)
	expenseRepo := expenses.NewRepository(pool)

	categoryService := categories.NewService(categories.NewRepository(pool))
	expenseService := expenses.NewService(expenseRepo, userRepo, categoryService, categorizer, rateService, &cfg.Categorizer)
	userService := users.NewService(userRepo, expenseRepo, rateService, &cfg.Migration)

	queue := expenseService.Queue()
	queue.Start()

	router := newRouter(cfg, deps,
		expenses.NewHandler(expenseService),
		categories.NewHandler(categoryService),
		users.NewHandler(userService),
		rates.NewHandler(rateService),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("expense api starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	// pending categorizations are finished before the pool closes
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("categorization queue did not drain", zap.Error(err), zap.Int("pending", queue.Pending()))
	}

	return nil
}
