// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PARTYCMS_DB_PATH" envDefault:"./data/partycms.db"`
	SessionSecret string `env:"PARTYCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"PARTYCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PARTYCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"PARTYCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"PARTYCMS_LOG_LEVEL" envDefault:"info"`

	// SessionLifetimeHours is how long an admin session stays valid without
	// a new login.
	SessionLifetimeHours int `env:"PARTYCMS_SESSION_LIFETIME_HOURS" envDefault:"24"`

	// Asset store configuration
	UploadsDir string `env:"PARTYCMS_UPLOADS_DIR" envDefault:"./uploads"`
	// PublicBaseURL is the externally visible URL prefix for uploaded assets,
	// e.g. "https://party.example.org/uploads". Defaults to the local path.
	PublicBaseURL string `env:"PARTYCMS_PUBLIC_BASE_URL" envDefault:"/uploads"`
	// OrphanSweepSchedule is a cron expression for the orphaned-asset sweep.
	// Empty disables the sweep.
	OrphanSweepSchedule string `env:"PARTYCMS_ORPHAN_SWEEP_SCHEDULE" envDefault:"30 3 * * *"`

	// Cache configuration
	RedisURL     string `env:"PARTYCMS_REDIS_URL"`                         // Optional Redis URL for the page cache
	CachePrefix  string `env:"PARTYCMS_CACHE_PREFIX" envDefault:"partycms:"` // Redis key prefix
	CacheTTL     int    `env:"PARTYCMS_CACHE_TTL" envDefault:"300"`        // Page cache TTL in seconds
	CacheMaxSize int    `env:"PARTYCMS_CACHE_MAX_SIZE" envDefault:"1000"`  // Max memory cache entries

	// Notifier (SMTP) configuration. Unset host leaves the notifier in
	// log-only mode.
	SMTPHost     string `env:"PARTYCMS_SMTP_HOST"`
	SMTPPort     int    `env:"PARTYCMS_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"PARTYCMS_SMTP_USERNAME"`
	SMTPPassword string `env:"PARTYCMS_SMTP_PASSWORD"`
	SMTPFrom     string `env:"PARTYCMS_SMTP_FROM" envDefault:"no-reply@party.example.org"`
	SMTPFromName string `env:"PARTYCMS_SMTP_FROM_NAME" envDefault:"Party Membership Office"`

	// Seeding configuration
	DoSeed bool `env:"PARTYCMS_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SMTPEnabled returns true if an SMTP host is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PARTYCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PARTYCMS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.SessionLifetimeHours <= 0 {
		return nil, fmt.Errorf("PARTYCMS_SESSION_LIFETIME_HOURS must be positive, got %d", cfg.SessionLifetimeHours)
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PARTYCMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
