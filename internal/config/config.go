package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultDialTimeout = 10 * time.Second
	DefaultCallTimeout = 5 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config is the top-level configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Player  PlayerConfig  `yaml:"player"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// PlayerConfig holds the daemon connection settings.
type PlayerConfig struct {
	// URL is the daemon's WebSocket endpoint, e.g. ws://localhost:7700/ws.
	URL string `yaml:"url"`

	// DialTimeout bounds the initial connection attempt.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// CallTimeout bounds each request/response call, including the remote
	// pulls performed by store refreshes.
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: text | json.
	Format string `yaml:"format"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics during `halcyonctl watch`,
	// e.g. ":9090". Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values. The player
// URL has no default and must be set via file or flag.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			DialTimeout: DefaultDialTimeout,
			CallTimeout: DefaultCallTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Player.URL == "" {
		return fmt.Errorf("player.url is required")
	}
	u, err := url.Parse(cfg.Player.URL)
	if err != nil {
		return fmt.Errorf("player.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("player.url: scheme must be ws or wss, got %q", u.Scheme)
	}
	if cfg.Player.DialTimeout <= 0 {
		return fmt.Errorf("player.dial_timeout must be positive")
	}
	if cfg.Player.CallTimeout <= 0 {
		return fmt.Errorf("player.call_timeout must be positive")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
	return nil
}
