// ABOUTME: Configuration loading and parsing for relay-hub
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete relay-hub configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Hub     HubConfig     `yaml:"hub"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds listener and WebSocket acceptance configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	// AllowedOrigins lists Origin header values accepted on upgrade.
	// Empty means same-host origins only.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// AllowEmptyOrigin accepts upgrades with no Origin header (native clients)
	AllowEmptyOrigin bool `yaml:"allow_empty_origin"`

	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	ReadTimeoutRaw  string `yaml:"read_timeout"`
	WriteTimeoutRaw string `yaml:"write_timeout"`
}

// HubConfig holds delivery and retention tuning
type HubConfig struct {
	// MailboxCapacity bounds each connection's outbound queue
	MailboxCapacity int `yaml:"mailbox_capacity"`
	// LogCapacity bounds each conversation's replay window
	LogCapacity int `yaml:"log_capacity"`

	LogRetention  time.Duration `yaml:"-"`
	SweepInterval time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	LogRetentionRaw  string `yaml:"log_retention"`
	SweepIntervalRaw string `yaml:"sweep_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with sensible local-development values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:         "localhost:8470",
			AllowEmptyOrigin: true,
		},
		Hub: HubConfig{
			MailboxCapacity: 64,
			LogCapacity:     200,
			LogRetention:    10 * time.Minute,
			SweepInterval:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Hub.MailboxCapacity < 1 {
		return fmt.Errorf("hub.mailbox_capacity must be at least 1")
	}
	if c.Hub.LogCapacity < 1 {
		return fmt.Errorf("hub.log_capacity must be at least 1")
	}
	if c.Hub.LogRetention <= 0 {
		return fmt.Errorf("hub.log_retention must be positive")
	}
	if c.Hub.SweepInterval <= 0 {
		return fmt.Errorf("hub.sweep_interval must be positive")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.ReadTimeoutRaw != "" {
		cfg.Server.ReadTimeout, err = time.ParseDuration(cfg.Server.ReadTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing read_timeout %q: %w", cfg.Server.ReadTimeoutRaw, err)
		}
	}

	if cfg.Server.WriteTimeoutRaw != "" {
		cfg.Server.WriteTimeout, err = time.ParseDuration(cfg.Server.WriteTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing write_timeout %q: %w", cfg.Server.WriteTimeoutRaw, err)
		}
	}

	if cfg.Hub.LogRetentionRaw != "" {
		cfg.Hub.LogRetention, err = time.ParseDuration(cfg.Hub.LogRetentionRaw)
		if err != nil {
			return fmt.Errorf("parsing log_retention %q: %w", cfg.Hub.LogRetentionRaw, err)
		}
	}

	if cfg.Hub.SweepIntervalRaw != "" {
		cfg.Hub.SweepInterval, err = time.ParseDuration(cfg.Hub.SweepIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sweep_interval %q: %w", cfg.Hub.SweepIntervalRaw, err)
		}
	}

	return nil
}
