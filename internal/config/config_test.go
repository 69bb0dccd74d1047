// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, validation, and durations

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
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"
  shutdown_timeout: "30s"

database:
  path: "./test.db"

auth:
  secret: "a-long-shared-secret"
  kdf_workers: 4

logging:
  level: "debug"
  format: "json"

seed:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("expected http_addr '0.0.0.0:8080', got %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Auth.Secret != "a-long-shared-secret" {
		t.Errorf("unexpected auth secret %q", cfg.Auth.Secret)
	}
	if cfg.Auth.KDFWorkers != 4 {
		t.Errorf("expected 4 kdf workers, got %d", cfg.Auth.KDFWorkers)
	}
	if !cfg.Seed.Enabled {
		t.Error("expected seed.enabled true")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("GATEKEEPER_TEST_SECRET", "env-secret")

	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "./test.db"
auth:
  secret: "${GATEKEEPER_TEST_SECRET}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("expected secret from environment, got %q", cfg.Auth.Secret)
	}
}

func TestLoad_DefaultShutdownTimeout(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "./test.db"
auth:
  secret: "s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing http_addr",
			content: `
database:
  path: "./test.db"
auth:
  secret: "s"
`,
			wantErr: "server.http_addr",
		},
		{
			name: "missing database path",
			content: `
server:
  http_addr: ":8080"
auth:
  secret: "s"
`,
			wantErr: "database.path",
		},
		{
			name: "missing secret",
			content: `
server:
  http_addr: ":8080"
database:
  path: "./test.db"
`,
			wantErr: "auth.secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
  shutdown_timeout: "not-a-duration"
database:
  path: "./test.db"
auth:
  secret: "s"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
