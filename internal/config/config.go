package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	RedisURL string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Workflow variant: "standard" (eight states) or "simple" (five states).
	WorkflowVariant string
	// Prefix for auto-generated regulation references (PREFIX-YEAR-NNN).
	ReferencePrefix string

	SearchEnabled   bool
	SearchIndexPath string
	SearchTimeout   time.Duration

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string
	Domain       string

	DashboardCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDurationEnv("JWT_REFRESH_EXPIRY", 7*24*time.Hour),

		WorkflowVariant: getEnv("WORKFLOW_VARIANT", "standard"),
		ReferencePrefix: getEnv("REFERENCE_PREFIX", "REG"),

		SearchEnabled:   getBoolEnv("SEARCH_ENABLED", true),
		SearchIndexPath: getEnv("SEARCH_INDEX_PATH", "data/regulations.bleve"),
		SearchTimeout:   getDurationEnv("SEARCH_TIMEOUT", 2*time.Second),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "compliance-evidence"),
		MinIOUseSSL:    getBoolEnv("MINIO_USE_SSL", false),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		Domain:       getEnv("DOMAIN", "localhost:5173"),

		DashboardCacheTTL: getDurationEnv("DASHBOARD_CACHE_TTL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
