package tools

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"

	"github.com/calcmcp/calcmcp-go/internal/core/session"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/metric"
)

type fakeClientSession struct {
	id       string
	notifyCh chan mcp.JSONRPCNotification
}

func newFakeClientSession(id string) *fakeClientSession {
	return &fakeClientSession{id: id, notifyCh: make(chan mcp.JSONRPCNotification, 1)}
}

func (s *fakeClientSession) Initialize()        {}
func (s *fakeClientSession) Initialized() bool  { return true }
func (s *fakeClientSession) SessionID() string  { return s.id }
func (s *fakeClientSession) NotificationChannel() chan<- mcp.JSONRPCNotification {
	return s.notifyCh
}

func okHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}

func TestSessionTouchMiddleware(t *testing.T) {
	h, err := session.New(time.Minute)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop(context.Background())

	deps := Deps{Sessions: h, Log: logger.Default()}
	wrapped := sessionTouchMiddleware(deps)(okHandler)

	srv := server.NewMCPServer("test", "0.0.0")
	ctx := srv.WithContext(context.Background(), newFakeClientSession("sess-abc"))

	if _, err := wrapped(ctx, callRequest("add", nil)); err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if _, err := h.Get(context.Background(), "sess-abc"); err != nil {
		t.Errorf("session was not registered by middleware: %v", err)
	}
	if got := h.Size(); got != 1 {
		t.Errorf("Size = %d, want 1", got)
	}
}

func TestSessionTouchMiddleware_NoSessionInContext(t *testing.T) {
	h, _ := session.New(time.Minute)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop(context.Background())

	wrapped := sessionTouchMiddleware(Deps{Sessions: h, Log: logger.Default()})(okHandler)
	if _, err := wrapped(context.Background(), callRequest("add", nil)); err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if got := h.Size(); got != 0 {
		t.Errorf("Size = %d, want 0 when no client session is present", got)
	}
}

func TestSessionTouchMiddleware_HandlerStopped(t *testing.T) {
	h, _ := session.New(time.Minute)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// The tool call must still succeed when the registry is gone.
	wrapped := sessionTouchMiddleware(Deps{Sessions: h, Log: logger.Default()})(okHandler)
	srv := server.NewMCPServer("test", "0.0.0")
	ctx := srv.WithContext(context.Background(), newFakeClientSession("sess-abc"))

	result, err := wrapped(ctx, callRequest("add", nil))
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if result.IsError {
		t.Error("tool call failed because session touch failed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(1), 2)
	wrapped := rateLimitMiddleware(limiter)(okHandler)

	for i := 0; i < 2; i++ {
		result, err := wrapped(context.Background(), callRequest("add", nil))
		if err != nil {
			t.Fatalf("wrapped handler error = %v", err)
		}
		if result.IsError {
			t.Fatalf("call %d rejected within burst", i+1)
		}
	}

	result, err := wrapped(context.Background(), callRequest("add", nil))
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if !result.IsError {
		t.Error("call above burst was not rate limited")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metric.New()
	wrapped := metricsMiddleware(m)(okHandler)

	wrapped(context.Background(), callRequest("add", nil))
	wrapped(context.Background(), callRequest("add", nil))

	errHandler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Error: boom"), nil
	}
	metricsMiddleware(m)(errHandler)(context.Background(), callRequest("divide", nil))

	if got := testutil.ToFloat64(m.ToolInvocations.WithLabelValues("add", "ok")); got != 2 {
		t.Errorf("add ok invocations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ToolInvocations.WithLabelValues("divide", "error")); got != 1 {
		t.Errorf("divide error invocations = %v, want 1", got)
	}
}

func TestNewServer(t *testing.T) {
	h, _ := session.New(time.Minute)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop(context.Background())

	srv := NewServer("calcmcp", "1.0.0", Deps{
		Sessions: h,
		Metrics:  metric.New(),
		Log:      logger.Default(),
		Limiter:  rate.NewLimiter(rate.Inf, 0),
	})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}
