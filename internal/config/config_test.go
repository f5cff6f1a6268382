package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("default port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Addr() != "127.0.0.1:7777" {
		t.Errorf("Addr() = %q, want 127.0.0.1:7777", cfg.Addr())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenewire.yaml")
	data := `
server:
  port: 7890
  transports: [tcp, websocket]
  command_timeout: 5s
loop:
  tick_interval: 8ms
assets:
  vault_root: testvault
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7890 {
		t.Errorf("port = %d, want 7890", cfg.Server.Port)
	}
	if len(cfg.Server.Transports) != 2 || cfg.Server.Transports[1] != "websocket" {
		t.Errorf("transports = %v", cfg.Server.Transports)
	}
	if cfg.Server.CommandTimeout.Std() != 5*time.Second {
		t.Errorf("command_timeout = %v, want 5s", cfg.Server.CommandTimeout.Std())
	}
	if cfg.Loop.TickInterval.Std() != 8*time.Millisecond {
		t.Errorf("tick_interval = %v, want 8ms", cfg.Loop.TickInterval.Std())
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host default not preserved, got %q", cfg.Server.Host)
	}
	if cfg.Assets.VaultRoot != "testvault" {
		t.Errorf("vault_root = %q", cfg.Assets.VaultRoot)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCENEWIRE_PORT", "9001")
	t.Setenv("SCENEWIRE_LOG_LEVEL", "warn")
	t.Setenv("SCENEWIRE_TRANSPORTS", "tcp, quic")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Log.Level)
	}
	if len(cfg.Server.Transports) != 2 || cfg.Server.Transports[1] != "quic" {
		t.Errorf("transports = %v", cfg.Server.Transports)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-loopback host", func(c *Config) { c.Server.Host = "0.0.0.0" }},
		{"public host", func(c *Config) { c.Server.Host = "192.168.1.4" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port high", func(c *Config) { c.Server.Port = 70000 }},
		{"no transports", func(c *Config) { c.Server.Transports = nil }},
		{"unknown transport", func(c *Config) { c.Server.Transports = []string{"carrier-pigeon"} }},
		{"zero sessions", func(c *Config) { c.Server.MaxSessions = 0 }},
		{"tiny line limit", func(c *Config) { c.Server.MaxLineBytes = 16 }},
		{"zero timeout", func(c *Config) { c.Server.CommandTimeout = 0 }},
		{"zero tick", func(c *Config) { c.Loop.TickInterval = 0 }},
		{"zero queue", func(c *Config) { c.Loop.QueueSize = 0 }},
		{"empty vault", func(c *Config) { c.Assets.VaultRoot = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted %s", tc.name)
			}
		})
	}
}

func TestLoopbackHosts(t *testing.T) {
	for _, host := range []string{"127.0.0.1", "::1", "localhost", "127.0.0.53"} {
		if !isLoopbackHost(host) {
			t.Errorf("isLoopbackHost(%q) = false, want true", host)
		}
	}
	for _, host := range []string{"0.0.0.0", "10.0.0.1", "example.com", ""} {
		if isLoopbackHost(host) {
			t.Errorf("isLoopbackHost(%q) = true, want false", host)
		}
	}
}
