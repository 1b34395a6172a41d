// Package opsserver provides the operational HTTP endpoint for CalcMCP.
package opsserver

import (
	"context"
	"net/http"
	"time"
)

// Server represents the operational HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates a new operational HTTP server.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		handler: handler,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
