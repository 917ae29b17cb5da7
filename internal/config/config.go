// Package config loads the gita CLI settings from GITA_* environment
// variables. Command-line flags override them after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidConfig = errors.New("invalid config")

// Cache substrates.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendBigcache = "bigcache"
)

// Log adapters.
const (
	LogZap    = "zap"
	LogLogrus = "logrus"
	LogSlog   = "slog"
)

type Config struct {
	BaseURL   string        `env:"GITA_BASE_URL"`
	Backend   string        `env:"GITA_CACHE_BACKEND" envDefault:"sqlite"`
	CachePath string        `env:"GITA_CACHE_PATH"`
	RedisAddr string        `env:"GITA_REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Namespace string        `env:"GITA_CACHE_NAMESPACE" envDefault:"bhagavad_gita_"`
	TTL       time.Duration `env:"GITA_CACHE_TTL" envDefault:"24h"`
	Codec     string        `env:"GITA_CACHE_CODEC" envDefault:"json"`
	// MaxDecode caps an encoded payload; 0 = unlimited.
	MaxDecode int `env:"GITA_CACHE_MAX_DECODE" envDefault:"0"`

	LogLevel   string `env:"GITA_LOG_LEVEL" envDefault:"warn"`
	LogBackend string `env:"GITA_LOG_BACKEND" envDefault:"zap"`
	// LogSample keeps one in N expiry events in the hook log; 0 or 1 keeps all.
	LogSample int `env:"GITA_LOG_SAMPLE" envDefault:"1"`

	HTTPTimeout time.Duration `env:"GITA_HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent   string        `env:"GITA_USER_AGENT"`
}

// Load parses the environment into a Config with defaults applied.
// The result is not validated; call Validate after applying overrides.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate normalizes names and checks ranges.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Codec = strings.ToLower(strings.TrimSpace(c.Codec))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogBackend = strings.ToLower(strings.TrimSpace(c.LogBackend))

	switch c.Backend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendBigcache:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Backend)
	}
	switch c.LogBackend {
	case LogZap, LogLogrus, LogSlog:
	default:
		return fmt.Errorf("%w: unknown log backend %q", ErrInvalidConfig, c.LogBackend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Namespace == "" {
		return fmt.Errorf("%w: cache namespace is empty", ErrInvalidConfig)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: cache TTL must be positive, got %s", ErrInvalidConfig, c.TTL)
	}
	if c.MaxDecode < 0 {
		return fmt.Errorf("%w: negative max decode %d", ErrInvalidConfig, c.MaxDecode)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: negative HTTP timeout %s", ErrInvalidConfig, c.HTTPTimeout)
	}
	if c.Backend == BackendRedis && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("%w: redis backend needs an address", ErrInvalidConfig)
	}
	return nil
}

// ResolveCachePath returns CachePath, or gita/cache.db under the user cache
// directory when it is empty.
func (c Config) ResolveCachePath() (string, error) {
	if c.CachePath != "" {
		return c.CachePath, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	return filepath.Join(dir, "gita", "cache.db"), nil
}
