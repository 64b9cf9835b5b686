package goSession

import (
	"strings"
	"time"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
)

// LintWarning is an advisory finding on a config that passes Validate.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that are valid but likely unintended.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if strings.HasPrefix(c.API.BaseURL, "http://") && !isLocalURL(c.API.BaseURL) {
		ws = append(ws, LintWarning{
			Code:     "plaintext_base_url",
			Severity: LintWarn,
			Message:  "bearer tokens are sent over plain http to a non-local host",
		})
	}
	if c.Session.DefaultTTL > 24*time.Hour {
		ws = append(ws, LintWarning{
			Code:     "default_ttl_long",
			Severity: LintWarn,
			Message:  "sessions without an explicit expiry live longer than a day",
		})
	}
	if c.API.Timeout > 2*time.Minute {
		ws = append(ws, LintWarning{
			Code:     "api_timeout_long",
			Severity: LintInfo,
			Message:  "a hung backend blocks callers for over two minutes",
		})
	}
	if c.Storage.Backend == StorageMemory {
		ws = append(ws, LintWarning{
			Code:     "memory_storage",
			Severity: LintInfo,
			Message:  "sessions do not survive a restart with memory storage",
		})
	}
	if c.Storage.Backend == StorageRedis && c.Storage.RedisPrefix == "" {
		ws = append(ws, LintWarning{
			Code:     "redis_prefix_empty",
			Severity: LintWarn,
			Message:  "session keys are stored without a prefix",
		})
	}
	if !c.Audit.Enabled {
		ws = append(ws, LintWarning{
			Code:     "audit_disabled",
			Severity: LintInfo,
			Message:  "session transitions are not audited",
		})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:     "audit_blocking",
			Severity: LintWarn,
			Message:  "a slow audit sink blocks session transitions",
		})
	}
	if c.Logging.Level == "debug" || c.Logging.Level == "trace" {
		ws = append(ws, LintWarning{
			Code:     "verbose_logging",
			Severity: LintInfo,
			Message:  "debug logging records request paths and user names",
		})
	}

	return ws
}

func isLocalURL(raw string) bool {
	rest := strings.TrimPrefix(raw, "http://")
	host := rest
	if i := strings.IndexAny(rest, ":/"); i >= 0 {
		host = rest[:i]
	}
	return host == "localhost" || host == "127.0.0.1" || strings.HasPrefix(rest, "[::1]")
}
