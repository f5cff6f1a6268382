// Package config loads the host configuration from YAML with environment
// overrides. Defaults are chosen so a bare binary serves the automation
// bridge on the loopback interface without any file present.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the well-known bridge port automation clients probe.
	DefaultPort = 7777

	envPrefix = "SCENEWIRE_"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Loop   LoopConfig   `yaml:"loop"`
	Assets AssetsConfig `yaml:"assets"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	// Host must resolve to a loopback address. The bridge mutates a live
	// scene and is never exposed beyond the local machine.
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Transports []string `yaml:"transports"`

	MaxSessions    int      `yaml:"max_sessions"`
	MaxLineBytes   int      `yaml:"max_line_bytes"`
	CommandTimeout Duration `yaml:"command_timeout"`
}

type LoopConfig struct {
	TickInterval Duration `yaml:"tick_interval"`
	QueueSize    int      `yaml:"queue_size"`
	MaxDrainTick int      `yaml:"max_drain_per_tick"`
}

type AssetsConfig struct {
	VaultRoot string `yaml:"vault_root"`
	IndexPath string `yaml:"index_path"`
	Watch     bool   `yaml:"watch"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration so YAML values read naturally ("10s", "16ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           DefaultPort,
			Transports:     []string{"tcp"},
			MaxSessions:    32,
			MaxLineBytes:   1 << 20,
			CommandTimeout: Duration(10 * time.Second),
		},
		Loop: LoopConfig{
			TickInterval: Duration(16 * time.Millisecond),
			QueueSize:    256,
			MaxDrainTick: 64,
		},
		Assets: AssetsConfig{
			VaultRoot: "vault",
			IndexPath: "vault/.scenewire/index.db",
			Watch:     true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then SCENEWIRE_* environment overrides, then validation.
// A missing file at an explicitly given path is an error; path == "" skips
// the file stage entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := lookup("HOST"); ok {
		cfg.Server.Host = v
	}
	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v, ok := lookup("TRANSPORTS"); ok {
		cfg.Server.Transports = splitList(v)
	}
	if v, ok := lookup("VAULT_ROOT"); ok {
		cfg.Assets.VaultRoot = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("COMMAND_TIMEOUT"); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Server.CommandTimeout = Duration(parsed)
		}
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the host refuses to start with. The
// loopback check is the load-bearing one: a non-loopback bind would expose
// unauthenticated scene mutation to the network.
func (c *Config) Validate() error {
	if !isLoopbackHost(c.Server.Host) {
		return fmt.Errorf("server.host %q is not a loopback address", c.Server.Host)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if len(c.Server.Transports) == 0 {
		return fmt.Errorf("server.transports is empty")
	}
	for _, t := range c.Server.Transports {
		switch t {
		case "tcp", "websocket", "quic":
		default:
			return fmt.Errorf("unknown transport %q", t)
		}
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be positive")
	}
	if c.Server.MaxLineBytes < 1024 {
		return fmt.Errorf("server.max_line_bytes %d too small", c.Server.MaxLineBytes)
	}
	if c.Server.CommandTimeout.Std() <= 0 {
		return fmt.Errorf("server.command_timeout must be positive")
	}
	if c.Loop.TickInterval.Std() <= 0 {
		return fmt.Errorf("loop.tick_interval must be positive")
	}
	if c.Loop.QueueSize < 1 {
		return fmt.Errorf("loop.queue_size must be positive")
	}
	if c.Loop.MaxDrainTick < 1 {
		return fmt.Errorf("loop.max_drain_per_tick must be positive")
	}
	if c.Assets.VaultRoot == "" {
		return fmt.Errorf("assets.vault_root is empty")
	}
	return nil
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Addr renders the bridge bind address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
