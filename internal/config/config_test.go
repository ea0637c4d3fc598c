package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected path %s, got %s", path, resolved)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected default config file: %v", err)
	}
	if !strings.Contains(string(data), "addr:") {
		t.Fatalf("default config missing addr key: %s", data)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":9000\"\nline_addr: \":6667\"\nclient_buffer: 8\nshutdown_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHANSERV_LOG_LEVEL", "debug")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.LineAddr != ":6667" {
		t.Errorf("unexpected addresses: %q %q", cfg.Addr, cfg.LineAddr)
	}
	if cfg.ClientBuffer != 8 {
		t.Errorf("expected client_buffer 8, got %d", cfg.ClientBuffer)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected shutdown_timeout 3s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected env override for log_level, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("client_buffer: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(&logger, path); err == nil {
		t.Fatal("expected validation error for client_buffer 0")
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", LogLevel: "warn"})
	if cfg.Addr != ":1234" || cfg.LogLevel != "warn" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ClientBuffer != Default().ClientBuffer {
		t.Fatalf("zero values must not override: %+v", cfg)
	}
}

func TestLoadLogRotation(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_file: chanserv.log\nlog_max_size_mb: 10\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHANSERV_LOG_MAX_BACKUPS", "7")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogMaxSizeMB != 10 || cfg.LogMaxBackups != 7 {
		t.Errorf("unexpected rotation settings: size %d backups %d", cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	}
	if cfg.LogMaxAgeDays != Default().LogMaxAgeDays {
		t.Errorf("expected default log_max_age_days, got %d", cfg.LogMaxAgeDays)
	}

	if err := os.WriteFile(path, []byte("log_max_age_days: -1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(&logger, path); err == nil {
		t.Fatal("expected validation error for negative log_max_age_days")
	}
}

func TestEveryKeyHasEnvOverride(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHANSERV_AUDIT_PATH", "/tmp/audit.db")
	t.Setenv("CHANSERV_MAX_MESSAGE_BYTES", "4096")
	t.Setenv("CHANSERV_READ_HEADER_TIMEOUT", "2s")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AuditPath != "/tmp/audit.db" {
		t.Errorf("expected env audit_path, got %q", cfg.AuditPath)
	}
	if cfg.MaxMessageBytes != 4096 {
		t.Errorf("expected env max_message_bytes, got %d", cfg.MaxMessageBytes)
	}
	if cfg.ReadHeaderTimeout != 2*time.Second {
		t.Errorf("expected env read_header_timeout, got %v", cfg.ReadHeaderTimeout)
	}
}
