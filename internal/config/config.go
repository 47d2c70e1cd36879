package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	defaultJWTSecret = "your-secret-key-change-in-production"
)

// Config holds the whole application configuration, populated from
// environment variables (.env is loaded by cmd/* through godotenv).
type Config struct {
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

// StoreConfig selects the Record Store backend.
type StoreConfig struct {
	Driver     string // postgres | sqlite
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
	Prefix   string
	CacheTTL time.Duration
}

type JWTConfig struct {
	AuthEnabled       bool
	Secret            string
	Issuer            string
	AccessTokenExpiry int // minutes
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// AuditConfig drives the link audit job.
type AuditConfig struct {
	Cron      string
	Queue     string
	ReportTTL time.Duration
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Bookshelf API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			SQLitePath: getEnv("SQLITE_PATH", "data/bookshelf.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "bookshelf"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "bookshelf:"),
			CacheTTL: getEnvDuration("CACHE_TTL", 15*time.Minute),
		},
		JWT: JWTConfig{
			AuthEnabled:       getEnvBool("AUTH_ENABLED", false),
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:            getEnv("JWT_ISSUER", "bookshelf-backend"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvFloat("RATE_LIMIT_RPS", 50),
			Burst:   getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Audit: AuditConfig{
			Cron:      getEnv("AUDIT_CRON", "0 3 * * *"),
			Queue:     getEnv("AUDIT_QUEUE", "low"),
			ReportTTL: getEnvDuration("AUDIT_REPORT_TTL", 7*24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values Load cannot default sensibly.
func (c *Config) Validate() error {
	err := validation.Errors{
		"STORE_DRIVER": validation.Validate(c.Store.Driver,
			validation.Required, validation.In(StoreDriverPostgres, StoreDriverSQLite)),
		"SQLITE_PATH": validation.Validate(c.Store.SQLitePath,
			validation.When(c.Store.Driver == StoreDriverSQLite, validation.Required)),
		"RATE_LIMIT_RPS": validation.Validate(c.RateLimit.RPS,
			validation.When(c.RateLimit.Enabled, validation.Min(0.1))),
		"RATE_LIMIT_BURST": validation.Validate(c.RateLimit.Burst,
			validation.When(c.RateLimit.Enabled, validation.Min(1))),
		"AUDIT_CRON": validation.Validate(c.Audit.Cron, validation.Required),
	}.Filter()
	if err != nil {
		return err
	}

	// Production must not run with defaults for secrets
	if c.App.Environment == "production" {
		if c.JWT.AuthEnabled && c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Store.Driver == StoreDriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
