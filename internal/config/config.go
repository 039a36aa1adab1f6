package config

import (
	"os"
	"time"
)

// Config holds process configuration, populated from the environment.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string

	// DatabaseURL is the Postgres connection string. When empty, the
	// in-memory stores are used instead.
	DatabaseURL string

	// RedisAddr enables the cross-instance broadcast bridge when set.
	RedisAddr string

	// TokenSecret signs access tokens.
	TokenSecret string

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration
}

// FromEnv builds a Config from environment variables, falling back to
// development defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:        ":8080",
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		TokenSecret: "dev-secret",
		TokenTTL:    30 * time.Minute,
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}

	return cfg
}
