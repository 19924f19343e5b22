package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/codexbridge/codex-bridge/bridge"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Bridge BridgeConfig `mapstructure:"bridge"`
}

// BridgeConfig groups the bridge-specific configuration sections.
type BridgeConfig struct {
	Cache       CacheConfig       `mapstructure:"cache"`
	Exec        ExecConfig        `mapstructure:"exec"`
	Fingerprint FingerprintConfig `mapstructure:"fingerprint"`
	Validate    ValidateConfig    `mapstructure:"validate"`
	History     HistoryConfig     `mapstructure:"history"`
	Guardrails  GuardrailsConfig  `mapstructure:"guardrails"`
}

// CacheConfig stores result cache settings. TTL and MaxEntries are fixed for
// the lifetime of the process; changing them requires a restart.
type CacheConfig struct {
	TTLSeconds      int  `mapstructure:"ttl_seconds"`      // entry time-to-live
	MaxEntries      int  `mapstructure:"max_entries"`      // LRU capacity
	SingleFlight    bool `mapstructure:"single_flight"`    // coalesce concurrent identical misses
	WatchInvalidate bool `mapstructure:"watch_invalidate"` // fsnotify-driven eager invalidation
}

// ExecConfig stores settings for the external codex CLI invocation.
type ExecConfig struct {
	Binary         string `mapstructure:"binary"`          // codex CLI binary name or path
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // per-invocation timeout
	AllowWrite     bool   `mapstructure:"allow_write"`     // permit write-capable sandbox modes
	Concurrency    int    `mapstructure:"concurrency"`     // max concurrent CLI executions
}

// FingerprintConfig stores directory fingerprinting settings.
type FingerprintConfig struct {
	Concurrency    int      `mapstructure:"concurrency"`     // parallel file hashing workers
	IgnorePatterns []string `mapstructure:"ignore_patterns"` // gitignore-style exclusions
}

// ValidateConfig stores working-directory safety settings.
type ValidateConfig struct {
	DenyPaths []string `mapstructure:"deny_paths"` // forbidden system roots
}

// HistoryConfig stores delegation history persistence settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// GuardrailsConfig stores request validation and output redaction settings.
type GuardrailsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
// Invalid cache or exec bounds are startup errors: the process must not come
// up with a non-positive TTL, capacity, or timeout.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Cache defaults
	viper.SetDefault("bridge.cache.ttl_seconds", 3600) // 1 hour
	viper.SetDefault("bridge.cache.max_entries", 100)
	viper.SetDefault("bridge.cache.single_flight", false)
	viper.SetDefault("bridge.cache.watch_invalidate", false)

	// Exec defaults
	viper.SetDefault("bridge.exec.binary", "codex")
	viper.SetDefault("bridge.exec.timeout_seconds", 300) // 5 minutes
	viper.SetDefault("bridge.exec.allow_write", false)
	viper.SetDefault("bridge.exec.concurrency", 2)

	// Fingerprint defaults
	viper.SetDefault("bridge.fingerprint.concurrency", 8)
	viper.SetDefault("bridge.fingerprint.ignore_patterns", internal.DefaultIgnorePatterns)

	// Validation defaults
	viper.SetDefault("bridge.validate.deny_paths", internal.DefaultDenyPaths)

	// History defaults
	viper.SetDefault("bridge.history.enabled", false)
	viper.SetDefault("bridge.history.db_path", internal.DefaultHistoryDBPath)

	// Guardrails defaults
	viper.SetDefault("bridge.guardrails.enabled", true)

	viper.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. bridge.cache.ttl_seconds
	// becomes BRIDGE_CACHE_TTL_SECONDS
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults and environment apply.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := AppConfig.Bridge.validate(); err != nil {
		return nil, err
	}

	return &AppConfig, nil
}

func (c *BridgeConfig) validate() error {
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("bridge.cache.ttl_seconds must be a positive integer, got %d", c.Cache.TTLSeconds)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("bridge.cache.max_entries must be a positive integer, got %d", c.Cache.MaxEntries)
	}
	if c.Exec.TimeoutSeconds <= 0 {
		return fmt.Errorf("bridge.exec.timeout_seconds must be a positive integer, got %d", c.Exec.TimeoutSeconds)
	}
	if c.Exec.Concurrency <= 0 {
		return fmt.Errorf("bridge.exec.concurrency must be a positive integer, got %d", c.Exec.Concurrency)
	}
	if c.Fingerprint.Concurrency <= 0 {
		return fmt.Errorf("bridge.fingerprint.concurrency must be a positive integer, got %d", c.Fingerprint.Concurrency)
	}
	return nil
}
