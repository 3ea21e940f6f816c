package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "4000" {
		t.Errorf("Expected default port 4000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Expected default env development, got %s", cfg.Env)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected IsDevelopment to be true by default")
	}
	if cfg.IsProduction() {
		t.Error("Expected IsProduction to be false by default")
	}
	if cfg.ActivationWarnThreshold != 100*time.Millisecond {
		t.Errorf("Expected 100ms activation threshold, got %v", cfg.ActivationWarnThreshold)
	}
	if cfg.UploadMaxAttempts != 5 {
		t.Errorf("Expected 5 upload attempts, got %d", cfg.UploadMaxAttempts)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("ACTIVATION_WARN_MS", "250")
	t.Setenv("R2_ENDPOINT", "https://example.r2.cloudflarestorage.com")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("Expected IsProduction to be true")
	}
	if cfg.ActivationWarnThreshold != 250*time.Millisecond {
		t.Errorf("Expected 250ms threshold, got %v", cfg.ActivationWarnThreshold)
	}
	if !cfg.StorageConfigured() {
		t.Error("Expected storage to be configured")
	}
}

func TestGetEnvIntInvalid(t *testing.T) {
	t.Setenv("UPLOAD_MAX_ATTEMPTS", "not-a-number")

	cfg := Load()
	if cfg.UploadMaxAttempts != 5 {
		t.Errorf("Expected fallback to default 5, got %d", cfg.UploadMaxAttempts)
	}
}
