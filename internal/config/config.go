package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Platform  PlatformConfig  `yaml:"platform"`
	Providers ProvidersConfig `yaml:"providers"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP API server settings
type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	APIKey         string        `yaml:"api_key"`      // Plain API key (dev setups)
	APIKeyHash     string        `yaml:"api_key_hash"` // bcrypt hash, preferred over api_key
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// PlatformConfig contains the product platform API connection settings
type PlatformConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// ProvidersConfig contains per-provider settings
type ProvidersConfig struct {
	Figma ProviderConfig `yaml:"figma"`
	Canva ProviderConfig `yaml:"canva"`
}

// ProviderConfig contains one design provider's settings. Token is a
// static fallback used when the platform holds no connection for the
// provider (personal access tokens, local development).
type ProviderConfig struct {
	Token string `yaml:"token"`
}

// JobsConfig contains job tracking settings
type JobsConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxPollFailures is the number of consecutive transport errors
	// tolerated before giving up on a job. An explicit 0 disables the
	// bound (poll until cancelled); the pointer distinguishes that from
	// an absent key, which gets the default.
	MaxPollFailures *int          `yaml:"max_poll_failures"`
	JournalPath     string        `yaml:"journal_path"`
	Retention       time.Duration `yaml:"retention"`      // Keep terminal jobs this long (0 = forever)
	PurgeInterval   time.Duration `yaml:"purge_interval"` // How often to run journal cleanup
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled    bool     `yaml:"enabled"`
	ListenAddr string   `yaml:"listen_addr"` // Default: :9090
	Path       string   `yaml:"path"`        // Default: /metrics
	AllowedIPs []string `yaml:"allowed_ips"` // IP addresses/CIDRs allowed to access metrics
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.MaxHeaderBytes == 0 {
		c.Server.MaxHeaderBytes = 1 << 20 // 1 MB
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}

	if c.Jobs.PollInterval == 0 {
		c.Jobs.PollInterval = 3 * time.Second
	}
	if c.Jobs.MaxPollFailures == nil {
		def := 20
		c.Jobs.MaxPollFailures = &def
	}
	if c.Jobs.JournalPath == "" {
		c.Jobs.JournalPath = "/var/lib/designbind/jobs.db"
	}
	if c.Jobs.Retention == 0 {
		c.Jobs.Retention = 7 * 24 * time.Hour
	}
	if c.Jobs.PurgeInterval == 0 {
		c.Jobs.PurgeInterval = time.Hour
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// Metrics defaults
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url is required")
	}

	if c.Server.APIKey != "" && c.Server.APIKeyHash != "" {
		return fmt.Errorf("server.api_key and server.api_key_hash are mutually exclusive")
	}

	if c.Jobs.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("jobs.poll_interval must be at least 100ms")
	}
	if c.Jobs.MaxPollFailures != nil && *c.Jobs.MaxPollFailures < 0 {
		return fmt.Errorf("jobs.max_poll_failures must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}
