// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultServerName = "calcmcp"

	// DefaultSessionTimeout matches the historical 1800 second idle
	// timeout client integrations already assume.
	DefaultSessionTimeout = 30 * time.Minute
	DefaultStopGrace      = 5 * time.Second

	DefaultOpsAddr = "127.0.0.1:9464"

	DefaultRateBurst = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Name: DefaultServerName,
		},
		Session: SessionSection{
			Timeout:   DefaultSessionTimeout,
			StopGrace: DefaultStopGrace,
		},
		Ops: OpsSection{
			Enabled: false,
			Addr:    DefaultOpsAddr,
		},
		Tools: ToolsSection{
			RateLimit: 0,
			RateBurst: DefaultRateBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
