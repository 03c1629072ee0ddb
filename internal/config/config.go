package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devCredentialKey is only used when CREDENTIAL_KEY is unset outside production.
const devCredentialKey = "0000000000000000000000000000000000000000000000000000000000000000"

// Config holds application configuration
type Config struct {
	// Server
	Port               string
	Env                string
	CORSAllowedOrigins []string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Plaid
	PlaidClientID     string
	PlaidSecret       string
	PlaidEnv          string
	PlaidClientUserID string
	PlaidCountryCodes []string
	RequestTimeout    time.Duration
	ProviderRetries   int
	ProviderBaseDelay time.Duration

	// Sync
	SyncWindowDays  int
	SyncConcurrency int
	PipelineAPIKey  string

	// cmd/sync triggers this server instead of syncing in-process when set
	APIURL string

	// Access credentials are sealed with this key (hex, 32 bytes)
	CredentialKey string

	// Cache; an empty RedisURL disables caching
	RedisURL string
	CacheTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cashdash"),
		DBPassword: getEnv("DB_PASSWORD", "cashdash"),
		DBName:     getEnv("DB_NAME", "cashdash"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		PlaidClientID:     os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:       os.Getenv("PLAID_SECRET"),
		PlaidEnv:          strings.ToLower(getEnv("PLAID_ENV", "sandbox")),
		PlaidClientUserID: getEnv("PLAID_CLIENT_USER_ID", "user-id"),
		PlaidCountryCodes: splitList(strings.ToUpper(getEnv("PLAID_COUNTRY_CODES", "US"))),

		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),
		APIURL:         os.Getenv("CASHDASH_API_URL"),
		CredentialKey:  os.Getenv("CREDENTIAL_KEY"),
		RedisURL:       os.Getenv("REDIS_URL"),
	}

	if cfg.PlaidEnv != "sandbox" && cfg.PlaidEnv != "production" {
		return nil, fmt.Errorf("invalid PLAID_ENV %q: must be sandbox or production", cfg.PlaidEnv)
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderBaseDelay, err = parseDuration("PROVIDER_RETRY_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderRetries, err = parseInt("PROVIDER_MAX_RETRIES", 2, 0); err != nil {
		return nil, err
	}
	if cfg.SyncWindowDays, err = parseInt("SYNC_WINDOW_DAYS", 90, 1); err != nil {
		return nil, err
	}
	if cfg.SyncConcurrency, err = parseInt("SYNC_CONCURRENCY", 1, 1); err != nil {
		return nil, err
	}

	if cfg.CredentialKey == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("CREDENTIAL_KEY is required in production")
		}
		log.Println("Warning: CREDENTIAL_KEY not set, using development key")
		cfg.CredentialKey = devCredentialKey
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseInt(key string, defaultValue, minValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n < minValue {
		return 0, fmt.Errorf("%s must be at least %d, got %d", key, minValue, n)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
