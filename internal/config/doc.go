// Package config handles configuration loading for relay-hub.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from RELAY_HUB_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. ~/.config/relay-hub/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  http_addr: "${RELAY_HUB_ADDR}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	hub:
//	  log_retention: "10m"
//	  sweep_interval: "1m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8470"   # WebSocket and health endpoints
//	  allowed_origins:
//	    - "https://app.example.com"
//	  allow_empty_origin: true    # accept native clients with no Origin
//	  read_timeout: "60s"
//	  write_timeout: "10s"
//
// Hub tuning:
//
//	hub:
//	  mailbox_capacity: 64        # outbound frames buffered per connection
//	  log_capacity: 200           # replay window per conversation
//	  log_retention: "10m"        # idle conversation lifetime
//	  sweep_interval: "1m"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/relay-hub/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
