// Package opsserver provides the operational HTTP endpoint for CalcMCP.
package opsserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/calcmcp/calcmcp-go/internal/core/session"
	"github.com/calcmcp/calcmcp-go/internal/infra/buildinfo"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the ops router.
type RouterConfig struct {
	// Sessions reports the active session count on /healthz. Optional.
	Sessions *session.Handler

	// Metrics serves the /metrics exposition. Optional; the endpoint
	// returns 404 when nil.
	Metrics *metric.Metrics

	// Log for request-level error reporting.
	Log logger.Logger
}

type healthResponse struct {
	Status         string         `json:"status"`
	Time           string         `json:"time"`
	Build          buildinfo.Info `json:"build"`
	ActiveSessions int            `json:"active_sessions"`
}

// NewRouter creates the ops HTTP router.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = logger.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status: "healthy",
			Time:   time.Now().UTC().Format(time.RFC3339),
			Build:  buildinfo.Get(),
		}
		if cfg.Sessions != nil {
			resp.ActiveSessions = cfg.Sessions.Size()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("failed to write health response", "error", err)
		}
	})

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return recoverMiddleware(log)(mux)
}

// recoverMiddleware converts handler panics into 500 responses.
func recoverMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic in ops handler",
						"path", r.URL.Path,
						"panic", rec,
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
