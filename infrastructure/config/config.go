package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Logging
	LogLevel string

	// Authentication
	AuthEnabled bool
	JWTSecret   string
	JWTIssuer   string

	// CORS
	EnableCORS         bool
	CORSAllowedOrigins []string

	// Rate limiting
	RateLimitPerMinute  int
	GestureEventsPerSec float64
	GestureBurst        int

	// Editing session behavior
	HistoryLimit    int
	MaxNodes        int
	MaxConnectors   int
	CacheTTLSeconds int

	// Log watching
	LogWatchPath  string
	LogStoreLimit int
	LogDebounce   time.Duration

	// Versioning
	MaxVersionsPerCanvas int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AuthEnabled: getEnvBool("AUTH_ENABLED", false),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "flowcanvas"),

		EnableCORS:         getEnvBool("ENABLE_CORS", true),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_RPM", 300),
		GestureEventsPerSec: getEnvFloat("GESTURE_EVENTS_PER_SEC", 120),
		GestureBurst:        getEnvInt("GESTURE_BURST", 240),

		HistoryLimit:    getEnvInt("HISTORY_LIMIT", 50),
		MaxNodes:        getEnvInt("MAX_NODES_PER_CANVAS", 1000),
		MaxConnectors:   getEnvInt("MAX_CONNECTORS_PER_CANVAS", 2000),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 30),

		LogWatchPath:  getEnv("LOG_WATCH_PATH", ""),
		LogStoreLimit: getEnvInt("LOG_STORE_LIMIT", 1000),
		LogDebounce:   getEnvDuration("LOG_DEBOUNCE", 100*time.Millisecond),

		MaxVersionsPerCanvas: getEnvInt("MAX_VERSIONS_PER_CANVAS", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig.
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.AuthEnabled && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production when auth is enabled")
		}
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be at least 1")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_RPM must be at least 1")
	}
	if c.LogStoreLimit < 1 {
		return fmt.Errorf("LOG_STORE_LIMIT must be at least 1")
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// DomainOverrides maps the environment knobs onto the domain defaults.
// Zero values in the result mean "keep the domain default".
type DomainOverrides struct {
	HistoryLimit  int
	MaxNodes      int
	MaxConnectors int
}

// Domain returns the domain-level overrides carried by this config.
func (c *Config) Domain() DomainOverrides {
	return DomainOverrides{
		HistoryLimit:  c.HistoryLimit,
		MaxNodes:      c.MaxNodes,
		MaxConnectors: c.MaxConnectors,
	}
}
