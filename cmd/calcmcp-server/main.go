// Package main provides the entry point for calcmcp-server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/calcmcp/calcmcp-go/internal/core/session"
	"github.com/calcmcp/calcmcp-go/internal/infra/buildinfo"
	"github.com/calcmcp/calcmcp-go/internal/infra/confloader"
	"github.com/calcmcp/calcmcp-go/internal/infra/shutdown"
	"github.com/calcmcp/calcmcp-go/internal/server/config"
	"github.com/calcmcp/calcmcp-go/internal/server/opsserver"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/metric"
	"github.com/calcmcp/calcmcp-go/internal/tools"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:    "calcmcp-server",
		Usage:   "CalcMCP arithmetic tool server (MCP over stdio)",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"CALCMCP_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level: debug, info, warn, error",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")

	// Load configuration
	cfg, err := loadConfig(configFile, c.String("log-level"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger. Logs go to stderr: stdout carries the MCP
	// stdio transport and must stay clean.
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting calcmcp-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", configFile)

	// Initialize metrics
	metrics := metric.New()

	// Initialize and start the session lifecycle manager
	sessions, err := session.New(cfg.Session.Timeout,
		session.WithSweepInterval(cfg.Session.SweepInterval),
		session.WithStopGrace(cfg.Session.StopGrace),
		session.WithLogger(log),
		session.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("init session handler: %w", err)
	}

	ctx := context.Background()
	if err := sessions.Start(ctx); err != nil {
		return fmt.Errorf("start session handler: %w", err)
	}

	log.Info("session lifecycle manager started",
		"timeout", cfg.Session.Timeout,
		"sweep_interval", sessions.SweepInterval())

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// The session handler is stopped last: the sweeper must never
	// outlive the process and all records are dropped on the way out.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping session lifecycle manager")
		return sessions.Stop(ctx)
	})

	// Build the MCP server with all calculator tools
	var limiter *rate.Limiter
	if cfg.Tools.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Tools.RateLimit), cfg.Tools.RateBurst)
	}

	mcpSrv := tools.NewServer(cfg.Server.Name, buildinfo.Version, tools.Deps{
		Sessions: sessions,
		Metrics:  metrics,
		Log:      log,
		Limiter:  limiter,
	})

	// Start the ops HTTP server if enabled
	if cfg.Ops.Enabled {
		opsRouter := opsserver.NewRouter(&opsserver.RouterConfig{
			Sessions: sessions,
			Metrics:  metrics,
			Log:      log,
		})
		opsSrv := opsserver.New(cfg.Ops.Addr, opsRouter)

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down ops server")
			return opsSrv.Shutdown(ctx)
		})

		go func() {
			log.Info("ops server listening", "addr", cfg.Ops.Addr)
			if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("ops server error", "error", err)
			}
		}()
	}

	// Watch the config file for live log-level changes
	if configFile != "" {
		watcher, err := startConfigWatcher(configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	// Serve MCP over stdio. The transport returns when the client
	// closes stdin, which also initiates shutdown.
	go func() {
		log.Info("serving MCP over stdio", "server_name", cfg.Server.Name)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			log.Error("stdio transport error", "error", err)
		} else {
			log.Info("stdio transport closed")
		}
		shutdownHandler.Trigger()
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, environment and
// flag overrides.
func loadConfig(configFile, logLevelOverride string) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// Flags outrank everything else
	if logLevelOverride != "" {
		if err := loader.LoadMap(map[string]any{"log.level": logLevelOverride}); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// startConfigWatcher applies log-level changes from the config file
// without a restart.
func startConfigWatcher(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}

	watcher.OnChange(func(path string) {
		reload := confloader.NewLoader()
		if err := reload.LoadFile(configFile); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if level := reload.GetString("log.level"); level != "" && level != logger.GetLevel() {
			log.Info("applying new log level", "level", level)
			logger.SetLevel(level)
		}
	})

	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.StartAsync()
	return watcher, nil
}
