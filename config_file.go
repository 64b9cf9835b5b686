package goSession

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override read by [LoadConfig].
const EnvPrefix = "GOSESSION_"

// LoadConfig starts from [DefaultConfig], overlays the YAML file at path
// (skipped when path is empty), applies GOSESSION_* environment overrides and
// validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	// API
	str("API_BASE_URL", &cfg.API.BaseURL)
	str("API_USER_AGENT", &cfg.API.UserAgent)
	if err := dur("API_TIMEOUT", &cfg.API.Timeout); err != nil {
		return err
	}

	// Session
	str("SIGN_IN_PATH", &cfg.Session.SignInPath)
	if err := dur("SESSION_DEFAULT_TTL", &cfg.Session.DefaultTTL); err != nil {
		return err
	}

	// Storage
	str("STORAGE_BACKEND", &cfg.Storage.Backend)
	str("SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("REDIS_ADDR", &cfg.Storage.RedisAddr)
	str("REDIS_PREFIX", &cfg.Storage.RedisPrefix)

	// Audit / metrics / logging
	if err := flag("AUDIT_ENABLED", &cfg.Audit.Enabled); err != nil {
		return err
	}
	if err := flag("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	return nil
}
