// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for calcmcp-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Session SessionSection `koanf:"session"`
	Ops     OpsSection     `koanf:"ops"`
	Tools   ToolsSection   `koanf:"tools"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the MCP server identity.
type ServerSection struct {
	// Name is the server name announced to MCP clients during
	// initialization.
	Name string `koanf:"name"`
}

// SessionSection configures the session lifecycle manager.
type SessionSection struct {
	// Timeout is the idle duration after which a session expires.
	Timeout time.Duration `koanf:"timeout"`

	// SweepInterval is the period between expiry sweeps. Zero derives
	// the interval from Timeout.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// StopGrace bounds how long shutdown waits for the sweeper to exit.
	StopGrace time.Duration `koanf:"stop_grace"`
}

// OpsSection configures the operational HTTP endpoint serving health
// and metrics. It is separate from the MCP transport, which runs over
// stdio.
type OpsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// ToolsSection configures tool invocation behavior.
type ToolsSection struct {
	// RateLimit is the sustained tool invocations per second across all
	// tools. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the token bucket size for RateLimit.
	RateBurst int `koanf:"rate_burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
