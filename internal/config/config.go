// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the admin panel configuration from OCMS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must never reach production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"OCMS_DB_PATH" envDefault:"./data/ocms-admin.db"`
	SessionSecret string `env:"OCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"OCMS_LOG_LEVEL" envDefault:"info"`

	// Session lifecycle
	SessionLifetime   time.Duration `env:"OCMS_SESSION_LIFETIME" envDefault:"24h"`
	IdleTimeout       time.Duration `env:"OCMS_IDLE_TIMEOUT" envDefault:"5m"`
	IdleCheckInterval time.Duration `env:"OCMS_IDLE_CHECK_INTERVAL" envDefault:"1s"`

	// Cache and cross-instance sync
	RedisURL    string        `env:"OCMS_REDIS_URL"` // Optional; enables Redis cache and snapshot fan-out
	CachePrefix string        `env:"OCMS_CACHE_PREFIX" envDefault:"ocms-admin:"`
	CacheTTL    time.Duration `env:"OCMS_CACHE_TTL" envDefault:"30s"`

	// Visitor tracking
	GeoIPDBPath string `env:"OCMS_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
	VisitorSalt string `env:"OCMS_VISITOR_SALT"`
	IPLookupURL string `env:"OCMS_IP_LOOKUP_URL" envDefault:"https://api.ipify.org?format=json"`
	TrackVisits bool   `env:"OCMS_TRACK_VISITS" envDefault:"true"`

	// Retention
	EventRetention   time.Duration `env:"OCMS_EVENT_RETENTION" envDefault:"720h"`
	VisitorRetention time.Duration `env:"OCMS_VISITOR_RETENTION" envDefault:"8760h"`

	// Seeding configuration
	DoSeed bool `env:"OCMS_DO_SEED" envDefault:"false"` // Create the default admin on first start
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if a Redis server is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OCMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("OCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("OCMS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if c.IdleTimeout <= 0 {
		return fmt.Errorf("OCMS_IDLE_TIMEOUT must be positive, got %s", c.IdleTimeout)
	}
	if c.IdleCheckInterval <= 0 || c.IdleCheckInterval > c.IdleTimeout {
		return fmt.Errorf("OCMS_IDLE_CHECK_INTERVAL must be positive and not exceed the idle timeout, got %s", c.IdleCheckInterval)
	}
	if c.SessionLifetime < c.IdleTimeout {
		return fmt.Errorf("OCMS_SESSION_LIFETIME (%s) must not be shorter than OCMS_IDLE_TIMEOUT (%s)",
			c.SessionLifetime, c.IdleTimeout)
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	classes := []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
	}

	charTypes := 0
	for _, class := range classes {
		if strings.ContainsAny(s, class) {
			charTypes++
		}
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune(strings.Join(classes, ""), r)
	}) >= 0 {
		charTypes++
	}

	return charTypes >= 3
}
