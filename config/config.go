package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration (optional; empty URL disables the retry queue
	// and the sweep run-lock)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Scheduling configuration
	Timezone           string
	SweepSchedule      string
	AssetRetrySchedule string
	SweepLockTTL       time.Duration

	// Limits
	GenerateMaxCount      int
	AssetRetryMaxAttempts int

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Scheduling
		Timezone:           getEnv("SCHEDULE_TIMEZONE", "UTC"),
		SweepSchedule:      getEnv("SWEEP_SCHEDULE", "@every 10m"),
		AssetRetrySchedule: getEnv("ASSET_RETRY_SCHEDULE", "@every 5m"),
		SweepLockTTL:       getEnvAsDuration("SWEEP_LOCK_TTL", "10m"),

		// Limits
		GenerateMaxCount:      getEnvAsInt("GENERATE_MAX_COUNT", 52),
		AssetRetryMaxAttempts: getEnvAsInt("ASSET_RETRY_MAX_ATTEMPTS", 3),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
