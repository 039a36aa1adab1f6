package config_test

import (
	"testing"
	"time"

	"github.com/jmoussa/collab-editor/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("TOKEN_TTL", "")

	cfg := config.FromEnv()

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Addr)
	}

	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("expected default TTL 30m, got %s", cfg.TokenTTL)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://example/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")

	cfg := config.FromEnv()

	if cfg.Addr != ":9999" {
		t.Errorf("expected :9999, got %q", cfg.Addr)
	}

	if cfg.DatabaseURL != "postgres://example/db" {
		t.Errorf("unexpected database url %q", cfg.DatabaseURL)
	}

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr %q", cfg.RedisAddr)
	}

	if cfg.TokenSecret != "s3cret" {
		t.Errorf("unexpected secret %q", cfg.TokenSecret)
	}

	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.TokenTTL)
	}
}

func TestFromEnv_BadTTLFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")

	cfg := config.FromEnv()

	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("expected fallback to 30m, got %s", cfg.TokenTTL)
	}
}
