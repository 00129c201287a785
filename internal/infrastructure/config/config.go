// Package config loads service configuration from the environment with an
// optional TOML overlay file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Upstream  UpstreamConfig  `toml:"upstream"`
	Explore   ExploreConfig   `toml:"explore"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
}

// UpstreamConfig holds console API connection settings.
type UpstreamConfig struct {
	BaseURL          string        `envconfig:"UPSTREAM_URL" default:"http://localhost:5001/console/api" toml:"base_url"`
	Timeout          time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s" toml:"timeout"`
	RetryMax         int           `envconfig:"UPSTREAM_RETRY_MAX" default:"3" toml:"retry_max"`
	BreakerThreshold int           `envconfig:"UPSTREAM_BREAKER_THRESHOLD" default:"5" toml:"breaker_threshold"`
	BreakerCooldown  time.Duration `envconfig:"UPSTREAM_BREAKER_COOLDOWN" default:"30s" toml:"breaker_cooldown"`
}

// ExploreConfig holds catalog and workflow behavior settings.
type ExploreConfig struct {
	SearchDebounce  time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"500ms" toml:"search_debounce"`
	DefaultLocale   string        `envconfig:"DEFAULT_LOCALE" default:"en-US" toml:"default_locale"`
	EditPermission  bool          `envconfig:"EDIT_PERMISSION" default:"true" toml:"edit_permission"`
	WorkspaceEditor bool          `envconfig:"WORKSPACE_EDITOR" default:"true" toml:"workspace_editor"`
	LoadOnStartup   bool          `envconfig:"LOAD_ON_STARTUP" default:"true" toml:"load_on_startup"`
	DepCheckTimeout time.Duration `envconfig:"DEP_CHECK_TIMEOUT" default:"30s" toml:"dep_check_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
}

// Load reads configuration from environment variables. When path is
// non-empty, values from the TOML file override the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("EXPLORE", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	return &cfg, nil
}
