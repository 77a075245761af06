package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all client configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Platform
	APIBaseURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Logging
	LogLevel string

	// Credential persistence. Empty means the per-user default
	// location (see session.DefaultTokenPath).
	TokenFile string

	// Local ops endpoint (/healthz, /readyz, /metrics). 0 disables it.
	OpsPort int

	// Caching
	CacheTTL time.Duration

	// Resilience (background refreshes only; user actions never retry)
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Background account refresh. 0 disables the poller.
	PollInterval time.Duration

	// Observability
	OTLPEndpoint string
	Tracing      bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		APIBaseURL: getEnv("PEERBR_API_URL", "http://localhost:5000"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		TokenFile: getEnv("PEERBR_TOKEN_FILE", ""),

		OpsPort: getEnvInt("OPS_PORT", 9464),

		CacheTTL: getEnvDuration("CACHE_TTL", 30*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),

		PollInterval: getEnvDuration("POLL_INTERVAL", 0),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Tracing:      getEnv("TRACING_ENABLED", "false") == "true",
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
		if i, err := strconv.Atoi(v); err == nil {
			return i
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
