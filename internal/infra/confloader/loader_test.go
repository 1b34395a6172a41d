package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Session struct {
		Timeout       time.Duration `koanf:"timeout"`
		SweepInterval time.Duration `koanf:"sweep_interval"`
	} `koanf:"session"`
	Ops struct {
		Enabled bool   `koanf:"enabled"`
		Addr    string `koanf:"addr"`
	} `koanf:"ops"`
	Tools struct {
		RateLimit float64 `koanf:"rate_limit"`
		RateBurst int     `koanf:"rate_burst"`
	} `koanf:"tools"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
session:
  timeout: "45m"
ops:
  enabled: true
  addr: "0.0.0.0:9464"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if addr := l.GetString("ops.addr"); addr != "0.0.0.0:9464" {
		t.Errorf("ops.addr = %q, want %q", addr, "0.0.0.0:9464")
	}
	if !l.GetBool("ops.enabled") {
		t.Error("ops.enabled should be true")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	err := l.LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	// Empty path should not error
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("CALCMCP_OPS_ADDR", "127.0.0.1:8080")
	t.Setenv("CALCMCP_OPS_ENABLED", "true")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if addr := l.GetString("ops.addr"); addr != "127.0.0.1:8080" {
		t.Errorf("ops.addr = %q, want %q", addr, "127.0.0.1:8080")
	}
}

func TestLoader_LoadEnv_UnderscoreKeys(t *testing.T) {
	// Keys with underscores of their own must keep them: only the first
	// underscore separates the section from the key.
	t.Setenv("CALCMCP_SESSION_SWEEP_INTERVAL", "7s")
	t.Setenv("CALCMCP_SESSION_STOP_GRACE", "3s")
	t.Setenv("CALCMCP_TOOLS_RATE_LIMIT", "12")
	t.Setenv("CALCMCP_TOOLS_RATE_BURST", "5")

	l := NewLoader()

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.SweepInterval != 7*time.Second {
		t.Errorf("session.sweep_interval from env = %v, want 7s", cfg.Session.SweepInterval)
	}
	if cfg.Tools.RateLimit != 12 {
		t.Errorf("tools.rate_limit from env = %v, want 12", cfg.Tools.RateLimit)
	}
	if cfg.Tools.RateBurst != 5 {
		t.Errorf("tools.rate_burst from env = %v, want 5", cfg.Tools.RateBurst)
	}
	if got := l.GetString("session.stop_grace"); got != "3s" {
		t.Errorf("session.stop_grace from env = %q, want %q", got, "3s")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_PORT", "9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if port := l.GetString("server.port"); port != "9090" {
		t.Errorf("server.port = %q, want %q", port, "9090")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"log.level": "debug",
		"debug":     true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if level := l.GetString("log.level"); level != "debug" {
		t.Errorf("log.level = %q, want %q", level, "debug")
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
ops:
  addr: "from-file:9464"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("CALCMCP_OPS_ADDR", "from-env:8080")

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment should override file
	if cfg.Ops.Addr != "from-env:8080" {
		t.Errorf("Addr = %q, want %q (env should override file)",
			cfg.Ops.Addr, "from-env:8080")
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
session:
  timeout: "45m"
  sweep_interval: "30s"
ops:
  enabled: true
  addr: "0.0.0.0:9464"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.Timeout != 45*time.Minute {
		t.Errorf("Timeout = %v, want 45m", cfg.Session.Timeout)
	}
	if cfg.Session.SweepInterval != 30*time.Second {
		t.Errorf("SweepInterval = %v, want 30s", cfg.Session.SweepInterval)
	}
	if !cfg.Ops.Enabled {
		t.Error("Enabled should be true")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}
