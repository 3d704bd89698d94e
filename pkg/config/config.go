package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Rates       RatesConfig
	LLM         LLMConfig
	Categorizer CategorizerConfig
	Migration   MigrationConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int    // seconds, applied to API routes
	CORSOrigins    string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// RatesConfig configures the exchange rate feed and the rate cache policy.
type RatesConfig struct {
	FeedURL        string
	AttemptTimeout time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	FreshWindow    time.Duration
	CacheTTL       time.Duration
}

// LLMConfig configures the classification model client
type LLMConfig struct {
	BaseURL          string
	APIKey           string
	Model            string
	Timeout          time.Duration
	CacheTTL         time.Duration
	BreakerInterval  int
	BreakerTimeout   int
	FailureThreshold int
	SuccessThreshold int
}

// CategorizerConfig sizes the background categorization worker pool
type CategorizerConfig struct {
	Workers   int
	QueueSize int
}

// MigrationConfig holds currency migration settings
type MigrationConfig struct {
	// PageSize is the number of expenses loaded in one go when a user's
	// currency changes. There is no real pagination behind it.
	PageSize int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 60),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT", 60),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "expenses"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Rates: RatesConfig{
			FeedURL:        getEnv("RATES_FEED_URL", "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@{dataset}/v1/currencies"),
			AttemptTimeout: getEnvAsDuration("RATES_ATTEMPT_TIMEOUT", 10*time.Second),
			MaxAttempts:    getEnvAsInt("RATES_MAX_ATTEMPTS", 5),
			InitialBackoff: getEnvAsDuration("RATES_INITIAL_BACKOFF", time.Second),
			MaxBackoff:     getEnvAsDuration("RATES_MAX_BACKOFF", 10*time.Second),
			FreshWindow:    getEnvAsDuration("RATES_FRESH_WINDOW", time.Hour),
			CacheTTL:       getEnvAsDuration("RATES_CACHE_TTL", 7*24*time.Hour),
		},
		LLM: LLMConfig{
			BaseURL:          getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:           getEnv("LLM_API_KEY", ""),
			Model:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout:          getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
			CacheTTL:         getEnvAsDuration("CATEGORY_CACHE_TTL", 30*24*time.Hour),
			BreakerInterval:  getEnvAsInt("LLM_BREAKER_INTERVAL", 60),
			BreakerTimeout:   getEnvAsInt("LLM_BREAKER_TIMEOUT", 30),
			FailureThreshold: getEnvAsInt("LLM_BREAKER_FAILURES", 5),
			SuccessThreshold: getEnvAsInt("LLM_BREAKER_SUCCESSES", 1),
		},
		Categorizer: CategorizerConfig{
			Workers:   getEnvAsInt("CATEGORIZER_WORKERS", 4),
			QueueSize: getEnvAsInt("CATEGORIZER_QUEUE_SIZE", 256),
		},
		Migration: MigrationConfig{
			PageSize: getEnvAsInt("MIGRATION_PAGE_SIZE", 1000000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Rates.FeedURL) == "" {
		errs = append(errs, errors.New("RATES_FEED_URL must not be empty"))
	}
	if c.Rates.MaxAttempts <= 0 {
		errs = append(errs, errors.New("RATES_MAX_ATTEMPTS must be positive"))
	}

	durations := map[string]time.Duration{
		"RATES_ATTEMPT_TIMEOUT": c.Rates.AttemptTimeout,
		"RATES_INITIAL_BACKOFF": c.Rates.InitialBackoff,
		"RATES_MAX_BACKOFF":     c.Rates.MaxBackoff,
		"RATES_FRESH_WINDOW":    c.Rates.FreshWindow,
		"RATES_CACHE_TTL":       c.Rates.CacheTTL,
		"LLM_TIMEOUT":           c.LLM.Timeout,
		"CATEGORY_CACHE_TTL":    c.LLM.CacheTTL,
	}
	for name, d := range durations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	if c.Rates.FreshWindow > c.Rates.CacheTTL {
		errs = append(errs, errors.New("RATES_FRESH_WINDOW must not exceed RATES_CACHE_TTL"))
	}
	if c.Categorizer.Workers <= 0 || c.Categorizer.QueueSize <= 0 {
		errs = append(errs, errors.New("CATEGORIZER_WORKERS and CATEGORIZER_QUEUE_SIZE must be positive"))
	}
	if c.Migration.PageSize <= 0 {
		errs = append(errs, errors.New("MIGRATION_PAGE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins splits the CORS origin list
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90s", "1h") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
