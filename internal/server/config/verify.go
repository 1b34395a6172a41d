// Package config defines the server configuration structure.
package config

import "errors"

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	if err := verifyOps(&cfg.Ops); err != nil {
		return err
	}
	if err := verifyTools(&cfg.Tools); err != nil {
		return err
	}
	return nil
}

func verifySession(cfg *SessionSection) error {
	if cfg.Timeout <= 0 {
		return errors.New("session.timeout must be positive")
	}
	if cfg.SweepInterval < 0 {
		return errors.New("session.sweep_interval must not be negative")
	}
	if cfg.StopGrace < 0 {
		return errors.New("session.stop_grace must not be negative")
	}
	return nil
}

func verifyOps(cfg *OpsSection) error {
	if cfg.Enabled && cfg.Addr == "" {
		return errors.New("ops.addr is required when ops.enabled is true")
	}
	return nil
}

func verifyTools(cfg *ToolsSection) error {
	if cfg.RateLimit < 0 {
		return errors.New("tools.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return errors.New("tools.rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}
