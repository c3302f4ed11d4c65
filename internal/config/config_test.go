package config

import (
	"strings"
	"testing"
)

const testSecret = "kX9#mP2$vL5nQ8@wR3zT6&bY1cF4dG7h"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GATHERLY_SESSION_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q; want default", cfg.MongoURI)
	}
	if cfg.MongoDBName != "gatherly" {
		t.Errorf("MongoDBName = %q; want gatherly", cfg.MongoDBName)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d; want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.UseRedisCache() {
		t.Error("Redis cache should be disabled by default")
	}
	if cfg.GeoIPEnabled() {
		t.Error("GeoIP should be disabled by default")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("GATHERLY_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without a session secret")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("GATHERLY_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load should reject short secrets")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	t.Setenv("GATHERLY_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject known weak secrets")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "0.0.0.0", ServerPort: 9000}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9000" {
		t.Errorf("ServerAddr = %q; want 0.0.0.0:9000", got)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"abcdefghijklmnopqrstuvwxyz", false},
		{"abcABC", false},
		{"abcABC123", true},
		{"abc123!@#", true},
		{testSecret, true},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v; want %v", tt.secret, got, tt.want)
		}
	}
}
