// Package config reads the runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"obrafin/internal/google"

	"github.com/joho/godotenv"
)

const (
	defaultPort      = "8080"
	defaultJWTSecret = "default_super_secret_key"
	defaultJWTTTL    = "24h"
	defaultOrigins   = "http://localhost:3000,http://localhost:5173"
)

type Config struct {
	Port         string
	GinMode      string
	DatabaseURL  string
	JWTSecret    string
	JWTTTL       time.Duration
	CORSOrigins  []string
	CookieSecure bool
	Google       google.Credentials
}

// LoadEnvFile loads a dotenv file when present. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Load builds the configuration from env vars with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", defaultPort),
		GinMode:     strings.TrimSpace(os.Getenv("GIN_MODE")),
		DatabaseURL: databaseURL(),
		JWTSecret:   strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", defaultOrigins)),
		Google: google.Credentials{
			File: strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")),
			JSON: strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")),
		},
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", defaultJWTTTL))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	secure := cfg.Release() || os.Getenv("RENDER") != ""
	if raw := strings.TrimSpace(os.Getenv("COOKIE_SECURE")); raw != "" {
		secure, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
	}
	cfg.CookieSecure = secure

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Release reports whether gin runs in release mode.
func (c *Config) Release() bool {
	return c.GinMode == "release"
}

func (c *Config) validate() error {
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Release() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET environment variable is required in release mode")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a postgres DSN from DB_* vars.
func databaseURL() string {
	if url := strings.TrimSpace(os.Getenv("DATABASE_URL")); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "postgres"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
