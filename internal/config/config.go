// Package config handles application configuration loading from defaults,
// environment variables and an optional YAML file. It provides a
// centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"zakazadmin/internal/catalog"
)

// DefaultAPIURL is the production ordering backend.
const DefaultAPIURL = "https://zakaz-backend-zij1.onrender.com/api"

// Session backends.
const (
	SessionValkey = "valkey"
	SessionMemory = "memory"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Ordering backend
	APIURL          string
	APITimeout      time.Duration
	CategoryCascade catalog.CascadeMode

	// Mutations allowed per operator per minute.
	RateLimit int

	// PostgreSQL audit log
	AuditEnabled bool
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string

	// Valkey (Redis-compatible) session store
	SessionBackend string
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	LogLevel  string
	LogFormat string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("API_URL", DefaultAPIURL)
	v.SetDefault("API_TIMEOUT", 15*time.Second)
	v.SetDefault("CATEGORY_CASCADE", string(catalog.CascadeServer))
	v.SetDefault("RATE_LIMIT", 60)

	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "zakazadmin")
	v.SetDefault("POSTGRES_PASSWORD", "changeme")
	v.SetDefault("POSTGRES_DB", "zakazadmin")

	v.SetDefault("SESSION_BACKEND", SessionValkey)
	v.SetDefault("VALKEY_HOST", "localhost")
	v.SetDefault("VALKEY_PORT", "6379")
	v.SetDefault("VALKEY_PASSWORD", "")
	v.SetDefault("VALKEY_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads configuration from v, which must already have its config file
// (if any) read. Environment variables override file values, which
// override defaults. Returns an error for malformed values and for
// settings that are unsafe in production mode.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cascade, err := catalog.ParseCascadeMode(v.GetString("CATEGORY_CASCADE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		APIURL:          strings.TrimRight(v.GetString("API_URL"), "/"),
		APITimeout:      v.GetDuration("API_TIMEOUT"),
		CategoryCascade: cascade,
		RateLimit:       v.GetInt("RATE_LIMIT"),

		AuditEnabled: v.GetBool("AUDIT_ENABLED"),
		DBHost:       v.GetString("POSTGRES_HOST"),
		DBPort:       v.GetString("POSTGRES_PORT"),
		DBUser:       v.GetString("POSTGRES_USER"),
		DBPassword:   v.GetString("POSTGRES_PASSWORD"),
		DBName:       v.GetString("POSTGRES_DB"),

		SessionBackend: strings.ToLower(v.GetString("SESSION_BACKEND")),
		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:       v.GetInt("VALKEY_DB"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("API_URL %q is not an absolute http(s) URL", cfg.APIURL)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive")
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be positive")
	}
	switch cfg.SessionBackend {
	case SessionValkey, SessionMemory:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND %q is not valkey or memory", cfg.SessionBackend)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT %q is not text or json", cfg.LogFormat)
	}

	if cfg.Env == "production" {
		if cfg.AuditEnabled && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if u.Scheme != "https" {
			return nil, fmt.Errorf("API_URL must use https in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
}
