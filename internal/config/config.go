// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret; AES-256 needs 32 bytes.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"TSN_DB_PATH" envDefault:"./data/tsn.db"`
	SessionSecret string `env:"TSN_SESSION_SECRET,required"`
	ServerHost    string `env:"TSN_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"TSN_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"TSN_ENV" envDefault:"development"`
	LogLevel      string `env:"TSN_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"TSN_UPLOADS_DIR" envDefault:"./uploads"`

	// Initial admin account, used only when the users table is empty.
	AdminEmail    string `env:"TSN_ADMIN_EMAIL"`
	AdminPassword string `env:"TSN_ADMIN_PASSWORD"`

	// Seeding configuration
	DoSeed bool `env:"TSN_DO_SEED" envDefault:"false"` // Seed starter articles/resources

	// Market ticker configuration
	MarketRefreshCron string `env:"TSN_MARKET_REFRESH_CRON" envDefault:"*/5 * * * *"`
	MarketCacheTTL    int    `env:"TSN_MARKET_CACHE_TTL" envDefault:"300"` // seconds

	// Optional Redis URL for the quote cache; in-memory when empty.
	RedisURL    string `env:"TSN_REDIS_URL"`
	CachePrefix string `env:"TSN_CACHE_PREFIX" envDefault:"tsn:"`

	// Optional editorial assistant (dek suggestions).
	OpenAIKey string `env:"TSN_OPENAI_API_KEY"`

	// Optional GeoIP database for coarse per-country view stats.
	GeoIPDBPath string `env:"TSN_GEOIP_DB_PATH"`
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

// AssistEnabled returns true if the editorial assistant is configured.
func (c Config) AssistEnabled() bool {
	return c.OpenAIKey != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("TSN_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("TSN_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("TSN_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character
// classes (lowercase, uppercase, digits, special characters).
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
