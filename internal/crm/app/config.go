package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SessionSecret string        // Optional: HMAC secret for session tokens (random per boot if unset)
	SessionTTL    time.Duration // Optional: session token lifetime (default: 12h)
	Issuer        string        // Optional: issuer claim for session tokens (default: litecrm)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./crm.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping sweep interval (default: 15m)
}

func LoadConfig() Config {
	return Config{
		SessionSecret:        os.Getenv("CRM_SESSION_SECRET"),
		SessionTTL:           getEnvDurationOrDefault("CRM_SESSION_TTL", 12*time.Hour),
		Issuer:               getEnvOrDefault("CRM_ISSUER", "litecrm"),
		DatabaseFile:         getEnvOrDefault("CRM_DATABASE_FILE", "crm.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
