// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the planner needs to start.
type Config struct {
	Port     string
	LogLevel string

	FinanceAPIURL string
	FinanceAPIKey string

	HTTPTimeout    time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
	BulkheadWait   time.Duration

	CatalogCacheTTL time.Duration

	OTLPEndpoint string
	PrefsPath    string
}

// Load reads the environment with sensible defaults for local
// development. Only the finance API settings have no default.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FinanceAPIURL: getEnv("FINANCE_API_URL", ""),
		FinanceAPIKey: getEnv("FINANCE_API_KEY", ""),

		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 200*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),
		BulkheadWait:   getEnvDuration("BULKHEAD_WAIT", 2*time.Second),

		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 15*time.Minute),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
		PrefsPath:    getEnv("PREFS_PATH", "data/preferences.json"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
