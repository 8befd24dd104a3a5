package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// loadFromString writes yaml to a temp file and loads it, failing the test
// on error.
func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, yaml)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and returns Load's result.
func loadStringErr(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}

func TestLoad_Valid(t *testing.T) {
	cfg := loadFromString(t, `
player:
  url: ws://localhost:7700/ws
  dial_timeout: 3s
  call_timeout: 2s
log:
  level: debug
  format: json
metrics:
  addr: ":9090"
`)

	if cfg.Player.URL != "ws://localhost:7700/ws" {
		t.Errorf("player.url: got %q", cfg.Player.URL)
	}
	if cfg.Player.DialTimeout != 3*time.Second {
		t.Errorf("dial_timeout: got %v", cfg.Player.DialTimeout)
	}
	if cfg.Player.CallTimeout != 2*time.Second {
		t.Errorf("call_timeout: got %v", cfg.Player.CallTimeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log: got %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("metrics.addr: got %q", cfg.Metrics.Addr)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, `
player:
  url: wss://player.example.net/ws
`)

	if cfg.Player.DialTimeout != DefaultDialTimeout {
		t.Errorf("default dial_timeout: got %v, want %v", cfg.Player.DialTimeout, DefaultDialTimeout)
	}
	if cfg.Player.CallTimeout != DefaultCallTimeout {
		t.Errorf("default call_timeout: got %v, want %v", cfg.Player.CallTimeout, DefaultCallTimeout)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("default log.level: got %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("default log.format: got %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("default metrics.addr: got %q, want empty", cfg.Metrics.Addr)
	}
}

func TestLoad_MissingURL(t *testing.T) {
	if _, err := loadStringErr(t, `log: {level: info}`); err == nil {
		t.Fatal("expected error for missing player.url, got nil")
	}
}

func TestLoad_BadScheme(t *testing.T) {
	if _, err := loadStringErr(t, `
player:
  url: http://localhost:7700/ws
`); err == nil {
		t.Fatal("expected error for non-ws scheme, got nil")
	}
}

func TestLoad_BadLevel(t *testing.T) {
	if _, err := loadStringErr(t, `
player:
  url: ws://localhost:7700/ws
log:
  level: verbose
`); err == nil {
		t.Fatal("expected error for unknown log level, got nil")
	}
}

func TestLoad_NegativeTimeout(t *testing.T) {
	if _, err := loadStringErr(t, `
player:
  url: ws://localhost:7700/ws
  call_timeout: -1s
`); err == nil {
		t.Fatal("expected error for negative call_timeout, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		if got := (LogConfig{Level: tc.level}).SlogLevel(); got != tc.want {
			t.Errorf("SlogLevel(%q): got %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestWatch_ReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := []byte("player:\n  url: ws://localhost:7700/ws\n")
	if err := os.WriteFile(path, initial, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before rewriting.
	time.Sleep(100 * time.Millisecond)

	updated := []byte("player:\n  url: ws://localhost:7700/ws\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, updated, 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded log.level: got %q, want debug", cfg.Log.Level)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatch_PlayerChangeStillReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("player:\n  url: ws://localhost:7700/ws\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// Player settings only apply on the next run, but the reload itself
	// must still reach onChange with the new values.
	if err := os.WriteFile(path, []byte("player:\n  url: ws://other:7700/ws\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Player.URL != "ws://other:7700/ws" {
			t.Errorf("reloaded player.url: got %q, want ws://other:7700/ws", cfg.Player.URL)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatch_KeepsPreviousOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("player:\n  url: ws://localhost:7700/ws\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := make(chan struct{}, 1)
	go func() {
		_ = Watch(ctx, path, func(*Config) {
			select {
			case called <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// Invalid YAML must not trigger onChange.
	if err := os.WriteFile(path, []byte("player: [broken"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-called:
		t.Fatal("onChange fired for an invalid config")
	case <-time.After(500 * time.Millisecond):
	}
}
