package goSession

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// Config configures a [Console]. Build one with [DefaultConfig] and adjust
// fields, or load one with [LoadConfig].
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig describes the backend and the transport used to reach it.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetime and sign-in redirects.
type SessionConfig struct {
	// SignInPath is where a lost session navigates to.
	SignInPath string `yaml:"sign_in_path"`
	// DefaultTTL applies when the sign-in response and the token carry no expiry.
	DefaultTTL time.Duration `yaml:"default_ttl"`
	// StorageKey names the durable entry.
	StorageKey string `yaml:"storage_key"`
	// StorageTimeout bounds storage calls made outside a caller's context
	// (the expiry timer).
	StorageTimeout time.Duration `yaml:"storage_timeout"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// StorageConfig selects the device-local backend for the durable entry.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	RedisDB     int    `yaml:"redis_db"`
}

/*
====================================
AUDIT / METRICS / LOGGING
====================================
*/

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// LoggingConfig controls the zerolog logger built by [NewLogger].
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" (default) or "console"
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a config for a backend on localhost:8080 with
// in-memory storage.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:      "http://localhost:8080/api/v1",
			Timeout:      30 * time.Second,
			UserAgent:    "goSession",
			MaxBodyBytes: 8 << 20,
		},
		Session: SessionConfig{
			SignInPath:     session.DefaultSignInPath,
			DefaultTTL:     8 * time.Hour,
			StorageKey:     session.EntryKey,
			StorageTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     StorageMemory,
			SQLitePath:  "goSession.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "console",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API BaseURL %q must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if c.API.MaxBodyBytes <= 0 {
		return errors.New("API MaxBodyBytes must be > 0")
	}

	// Session
	if !strings.HasPrefix(c.Session.SignInPath, "/") {
		return errors.New("Session SignInPath must start with /")
	}
	if c.Session.DefaultTTL <= 0 {
		return errors.New("Session DefaultTTL must be > 0")
	}
	if strings.TrimSpace(c.Session.StorageKey) == "" {
		return errors.New("Session StorageKey is required")
	}
	if c.Session.StorageTimeout <= 0 {
		return errors.New("Session StorageTimeout must be > 0")
	}

	// Storage
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return errors.New("Storage SQLitePath is required for the sqlite backend")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("Storage RedisAddr is required for the redis backend")
		}
		if c.Storage.RedisDB < 0 {
			return errors.New("Storage RedisDB must be >= 0")
		}
	default:
		return fmt.Errorf("unsupported Storage Backend %q", c.Storage.Backend)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Logging
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("unsupported Logging Format %q", c.Logging.Format)
	}

	return nil
}
