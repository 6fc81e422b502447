package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	StoreDriver  string // Store backend (sqlite, postgres, memory) (default: sqlite)
	DatabaseFile string // Path to SQLite database file (default: ./authd.db)
	DatabaseURL  string // Postgres DSN, required when StoreDriver is postgres

	PepperFile string // Path to file containing the secret-hashing pepper (default: ./pepper)

	BootstrapToken string // Optional: token required to perform bootstrap
	AdminToken     string // Optional: token guarding the client admin surface

	AccessTokenTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTokenTTL time.Duration // Refresh token lifetime (default: 30 days)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		StoreDriver:  getEnvOrDefault("AUTHD_STORE_DRIVER", "sqlite"),
		DatabaseFile: getEnvOrDefault("AUTHD_DATABASE_FILE", "authd.db"),
		DatabaseURL:  os.Getenv("AUTHD_DATABASE_URL"),

		PepperFile: getEnvOrDefault("AUTHD_PEPPER_FILE", "pepper"),

		BootstrapToken: os.Getenv("AUTHD_BOOTSTRAP_TOKEN"),
		AdminToken:     os.Getenv("AUTHD_ADMIN_TOKEN"),

		AccessTokenTTL:  getEnvDurationOrDefault("AUTHD_ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getEnvDurationOrDefault("AUTHD_REFRESH_TOKEN_TTL", 30*24*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
