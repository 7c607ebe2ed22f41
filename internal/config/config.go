package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// DefaultBcryptCost is used when BCRYPT_COST is unset.
const DefaultBcryptCost = 12

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	LogLevel          string
	DBDSN             string
	DBMaxConns        int
	RunMigrations     bool
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	SessionTokenTTL   time.Duration
	AdminPasswordHash string
	BcryptCost        int

	// Booking
	HoldTTL           time.Duration
	HoldMaxRetries    int
	BookingWindowDays int

	// Redis (optional, shared rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitCapacity    int
	RateLimitRefillEvery time.Duration

	// RabbitMQ (optional, appointment events)
	AMQPURL string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.LogLevel = getEnv("LOG_LEVEL", "")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}

	cfg.RunMigrations, err = getEnvAsBool("RUN_MIGRATIONS", true)
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL for admins, parse as time.Duration (e.g. "15m", "1h").
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Anonymous booking sessions live longer than a single hold.
	cfg.SessionTokenTTL, err = getEnvAsDuration("SESSION_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TOKEN_TTL: %w", err)
	}

	// Admin login is disabled when no hash is configured.
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", DefaultBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.HoldTTL, err = getEnvAsDuration("HOLD_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid HOLD_TTL: %w", err)
	}
	if cfg.HoldTTL <= 0 {
		return nil, fmt.Errorf("HOLD_TTL must be positive")
	}

	cfg.HoldMaxRetries, err = getEnvAsInt("HOLD_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid HOLD_MAX_RETRIES: %w", err)
	}
	if cfg.HoldMaxRetries < 0 {
		return nil, fmt.Errorf("HOLD_MAX_RETRIES must not be negative")
	}

	cfg.BookingWindowDays, err = getEnvAsInt("BOOKING_WINDOW_DAYS", 90)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_WINDOW_DAYS: %w", err)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.RateLimitCapacity, err = getEnvAsInt("RATE_LIMIT_CAPACITY", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CAPACITY: %w", err)
	}
	if cfg.RateLimitCapacity < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_CAPACITY must be at least 1")
	}
	cfg.RateLimitRefillEvery, err = getEnvAsDuration("RATE_LIMIT_REFILL_EVERY", 6*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_EVERY: %w", err)
	}
	if cfg.RateLimitRefillEvery <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REFILL_EVERY must be positive")
	}

	cfg.AMQPURL = getEnv("AMQP_URL", "")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}
	return val, nil
}
