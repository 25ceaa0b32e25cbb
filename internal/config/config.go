// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	// Embedded zone database so TIMEZONE resolves on minimal container images.
	_ "time/tzdata"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for CORS and links.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Storage selects and configures the session persistence provider.
	Storage StorageConfig

	// Redis holds Redis connection settings (used when Storage.Backend is redis).
	Redis RedisConfig

	// Calendar controls how time-window filters interpret "today" and "this week".
	Calendar CalendarConfig

	// Auth holds mock-authentication settings.
	Auth AuthConfig

	// SeedFile optionally overrides the embedded seed data with a YAML file.
	SeedFile string

	// TrustedProxies lists the CIDR ranges whose forwarding headers are
	// believed when resolving the client IP.
	TrustedProxies []string
}

// StorageConfig selects the key-value backend that holds per-browser
// session snapshots.
type StorageConfig struct {
	// Backend is one of "memory", "redis", "sqlite" (default: "memory").
	Backend string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// CalendarConfig holds the calendar conventions used by the filter engine.
type CalendarConfig struct {
	// Timezone is the IANA zone that defines the local calendar day.
	Timezone string

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string
}

// Location resolves Timezone, falling back to time.Local for an empty value.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WeekStartDay maps WeekStart to a time.Weekday.
func (c CalendarConfig) WeekStartDay() time.Weekday {
	if strings.EqualFold(c.WeekStart, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SentinelPassword is the single password accepted for every directory user.
	SentinelPassword string

	// RevalidateSession re-checks a restored session snapshot against the
	// user directory. When false the snapshot is trusted verbatim.
	RevalidateSession bool

	// LoginRateLimit is the number of login attempts allowed per IP per minute.
	LoginRateLimit int

	// SessionCacheSize caps how many signed-in browser clients keep a live
	// session in memory. Evicted clients are reloaded from storage.
	SessionCacheSize int
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if a value is present but invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Storage: StorageConfig{
			Backend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
			SQLitePath: getEnv("SQLITE_PATH", "./eventscope.db"),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Calendar: CalendarConfig{
			Timezone:  getEnv("TIMEZONE", "America/Los_Angeles"),
			WeekStart: strings.ToLower(getEnv("WEEK_START", "sunday")),
		},

		Auth: AuthConfig{
			SentinelPassword:  getEnv("AUTH_SENTINEL_PASSWORD", "password"),
			RevalidateSession: getEnvBool("SESSION_REVALIDATE", true),
			LoginRateLimit:    getEnvInt("LOGIN_RATE_LIMIT", 10),
			SessionCacheSize:  getEnvInt("SESSION_CACHE_SIZE", 10000),
		},

		SeedFile: getEnv("SEED_FILE", ""),

		// Loopback, Docker and LAN private ranges, IPv6 unique-local.
		TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{
			"127.0.0.0/8",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"fd00::/8",
		}),
	}

	switch cfg.Storage.Backend {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of memory, redis, sqlite (got %q)", cfg.Storage.Backend)
	}

	switch cfg.Calendar.WeekStart {
	case "sunday", "monday":
	default:
		return nil, fmt.Errorf("WEEK_START must be sunday or monday (got %q)", cfg.Calendar.WeekStart)
	}

	if _, err := cfg.Calendar.Location(); err != nil {
		return nil, err
	}

	if cfg.Auth.SentinelPassword == "" {
		return nil, fmt.Errorf("AUTH_SENTINEL_PASSWORD must not be empty")
	}

	if cfg.Auth.SessionCacheSize < 1 {
		return nil, fmt.Errorf("SESSION_CACHE_SIZE must be positive (got %d)", cfg.Auth.SessionCacheSize)
	}

	for _, cidr := range cfg.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid CIDR %q", cidr)
		}
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvBool reads a boolean env var ("true", "1", "false", ...) or returns the default.
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping blank entries, or
// returns the default. An empty value yields an empty list.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
