// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8470"
  allowed_origins:
    - "https://app.example.com"
    - "https://staging.example.com"
  allow_empty_origin: true
  read_timeout: "60s"
  write_timeout: "10s"

hub:
  mailbox_capacity: 128
  log_capacity: 500
  log_retention: "15m"
  sweep_interval: "30s"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8470" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8470")
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("Server.AllowedOrigins count = %d, want 2", len(cfg.Server.AllowedOrigins))
	}
	if !cfg.Server.AllowEmptyOrigin {
		t.Error("Server.AllowEmptyOrigin = false, want true")
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want 10s", cfg.Server.WriteTimeout)
	}
	if cfg.Hub.MailboxCapacity != 128 {
		t.Errorf("Hub.MailboxCapacity = %d, want 128", cfg.Hub.MailboxCapacity)
	}
	if cfg.Hub.LogCapacity != 500 {
		t.Errorf("Hub.LogCapacity = %d, want 500", cfg.Hub.LogCapacity)
	}
	if cfg.Hub.LogRetention != 15*time.Minute {
		t.Errorf("Hub.LogRetention = %v, want 15m", cfg.Hub.LogRetention)
	}
	if cfg.Hub.SweepInterval != 30*time.Second {
		t.Errorf("Hub.SweepInterval = %v, want 30s", cfg.Hub.SweepInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:9000"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Hub.MailboxCapacity != 64 {
		t.Errorf("Hub.MailboxCapacity = %d, want default 64", cfg.Hub.MailboxCapacity)
	}
	if cfg.Hub.LogCapacity != 200 {
		t.Errorf("Hub.LogCapacity = %d, want default 200", cfg.Hub.LogCapacity)
	}
	if cfg.Hub.LogRetention != 10*time.Minute {
		t.Errorf("Hub.LogRetention = %v, want default 10m", cfg.Hub.LogRetention)
	}
	if cfg.Hub.SweepInterval != time.Minute {
		t.Errorf("Hub.SweepInterval = %v, want default 1m", cfg.Hub.SweepInterval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("RELAY_HUB_TEST_ADDR", "10.0.0.5:8470")

	configPath := writeConfig(t, `
server:
  http_addr: "${RELAY_HUB_TEST_ADDR}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPAddr != "10.0.0.5:8470" {
		t.Errorf("Server.HTTPAddr = %q, want expanded env value", cfg.Server.HTTPAddr)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8470"
hub:
  log_retention: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should fail on invalid duration")
	}
	if !strings.Contains(err.Error(), "log_retention") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() should fail on missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "http_addr",
		},
		{
			name:    "zero mailbox capacity",
			mutate:  func(c *Config) { c.Hub.MailboxCapacity = 0 },
			wantErr: "mailbox_capacity",
		},
		{
			name:    "zero log capacity",
			mutate:  func(c *Config) { c.Hub.LogCapacity = 0 },
			wantErr: "log_capacity",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Hub.LogRetention = -time.Second },
			wantErr: "log_retention",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
