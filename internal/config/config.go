// Package config provides configuration management for the Lorelight server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the server.
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Database configuration
	DatabaseURL string

	// Auth configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Hue bridge configuration
	HueDiscoveryURL   string
	HueRequestTimeout time.Duration

	// Scene activation
	ActivationWarnThreshold time.Duration // Advisory latency budget for scene activation
	SeekSettleDelay         time.Duration // Wait before seeking to a configured start offset

	// Object storage (Cloudflare R2, S3-compatible)
	R2Endpoint      string
	R2AccessKeyID   string
	R2SecretKey     string
	R2Bucket        string
	R2Region        string
	R2PublicBaseURL string

	// Upload retry policy
	UploadMaxAttempts int
	UploadRetryBase   time.Duration

	// CORS configuration
	CORSOrigin string
}

// Load loads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "4000"),
		Env:  getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "file:./lorelight.db"),

		// Auth
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,

		// Hue
		HueDiscoveryURL:   getEnv("HUE_DISCOVERY_URL", "https://discovery.meethue.com"),
		HueRequestTimeout: time.Duration(getEnvInt("HUE_REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,

		// Activation
		ActivationWarnThreshold: time.Duration(getEnvInt("ACTIVATION_WARN_MS", 100)) * time.Millisecond,
		SeekSettleDelay:         time.Duration(getEnvInt("SEEK_SETTLE_MS", 500)) * time.Millisecond,

		// Object storage
		R2Endpoint:      getEnv("R2_ENDPOINT", ""),
		R2AccessKeyID:   getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretKey:     getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:        getEnv("R2_BUCKET", "lorelight-audio"),
		R2Region:        getEnv("R2_REGION", "auto"),
		R2PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),

		// Upload retries
		UploadMaxAttempts: getEnvInt("UPLOAD_MAX_ATTEMPTS", 5),
		UploadRetryBase:   time.Duration(getEnvInt("UPLOAD_RETRY_BASE_MS", 5000)) * time.Millisecond,

		// CORS
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StorageConfigured returns true if object storage credentials are present.
func (c *Config) StorageConfigured() bool {
	return c.R2Endpoint != "" && c.R2AccessKeyID != "" && c.R2SecretKey != ""
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
