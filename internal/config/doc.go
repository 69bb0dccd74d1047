// Package config handles configuration loading for gatekeeper.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  secret: "${GATEKEEPER_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  shutdown_timeout: "10s"
//
// Database:
//
//	database:
//	  path: "/var/lib/gatekeeper/gatekeeper.db"
//
// Authentication:
//
//	auth:
//	  secret: "${GATEKEEPER_SECRET}"  # Required; encrypts session tokens
//	  kdf_workers: 8                  # Concurrent key derivations (0 = default)
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Seeding:
//
//	seed:
//	  enabled: true   # Create default roles and the root account on startup
//
// # Usage
//
//	cfg, err := config.Load("/etc/gatekeeper/gatekeeper.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
