package config

import (
	"time"

	redisclient "github.com/vietddude/taxocache/internal/infra/redis"
	"github.com/vietddude/taxocache/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Source   SourceConfig       `yaml:"source"`
	Cache    CacheConfig        `yaml:"cache"`
	Retry    RetryConfig        `yaml:"retry"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// SourceConfig holds settings for the upstream specialty directory.
type SourceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig holds the TTLs for both cache tiers and the directory used by
// the file-backed durable store.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`         // in-process tier
	DurableTTL time.Duration `yaml:"durable_ttl"` // durable tier, longer
	Dir        string        `yaml:"dir"`         // file store fallback
}

// RetryConfig holds fetch retry settings.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
