// Package session implements the session lifecycle manager for CalcMCP.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calcmcp/calcmcp-go/internal/core/domain"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/metric"
)

// Lifecycle states of the Handler.
const (
	stateNew int32 = iota
	stateStarting
	stateRunning
	stateStopping
	stateStopped
)

// Defaults for the sweeper and shutdown behavior.
const (
	// DefaultSweepDivisor derives the sweep interval from the idle timeout.
	DefaultSweepDivisor = 4

	// MinSweepInterval bounds the sweep interval below so very small
	// timeouts cannot busy-loop the sweeper.
	MinSweepInterval = 10 * time.Millisecond

	// DefaultStopGrace is how long Stop waits for the sweeper to exit
	// before declaring the shutdown degraded.
	DefaultStopGrace = 5 * time.Second
)

// Handler is the session lifecycle manager consumed by the server bootstrap.
//
// It owns a Registry and one background sweeper goroutine. Start launches the
// sweeper before the server accepts tool invocations; Stop cancels it, waits
// for it to exit, and releases all sessions. The handler is single-use: once
// stopped it cannot be restarted.
type Handler struct {
	registry *Registry

	timeout       time.Duration
	sweepInterval time.Duration
	stopGrace     time.Duration

	log     logger.Logger
	metrics *metric.Metrics

	state  atomic.Int32
	mu     sync.Mutex // serializes Start/Stop transitions
	stopCh chan struct{}
	doneCh chan struct{}
}

// Option configures the Handler.
type Option func(*Handler)

// WithSweepInterval overrides the derived sweep interval. Values below
// MinSweepInterval are clamped.
func WithSweepInterval(interval time.Duration) Option {
	return func(h *Handler) {
		h.sweepInterval = interval
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

// WithMetrics attaches session metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithStopGrace overrides the bounded wait for sweeper exit during Stop.
// Non-positive values keep the default.
func WithStopGrace(grace time.Duration) Option {
	return func(h *Handler) {
		if grace > 0 {
			h.stopGrace = grace
		}
	}
}

// New creates a session handler with the given idle timeout.
// The timeout must be positive; otherwise no registry is created and
// ErrInvalidArgument is returned.
func New(timeout time.Duration, opts ...Option) (*Handler, error) {
	if timeout <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("session timeout must be positive, got %s", timeout))
	}

	h := &Handler{
		timeout:   timeout,
		stopGrace: DefaultStopGrace,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.sweepInterval <= 0 {
		h.sweepInterval = timeout / DefaultSweepDivisor
	}
	if h.sweepInterval < MinSweepInterval {
		h.sweepInterval = MinSweepInterval
	}

	h.registry = NewRegistry(timeout)
	return h, nil
}

// Timeout returns the configured idle timeout.
func (h *Handler) Timeout() time.Duration {
	return h.timeout
}

// SweepInterval returns the effective sweep interval.
func (h *Handler) SweepInterval() time.Duration {
	return h.sweepInterval
}

// Start launches the expiry sweeper. It returns once the sweeper goroutine is
// scheduled, not after its first tick. Calling Start on a running handler
// fails with ErrAlreadyStarted; on a stopped handler with ErrHandlerStopped.
func (h *Handler) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state.Load() {
	case stateStarting, stateRunning:
		return domain.ErrAlreadyStarted
	case stateStopping, stateStopped:
		return domain.ErrHandlerStopped
	}

	h.state.Store(stateStarting)
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})
	go h.sweepLoop()
	h.state.Store(stateRunning)

	h.log.Info("session handler started",
		"timeout", h.timeout.String(),
		"sweep_interval", h.sweepInterval.String())
	return nil
}

// Stop cancels the sweeper, waits for it to exit bounded by the grace period,
// then releases all sessions. Once Stop begins, registry mutations fail with
// ErrNotRunning. Calling Stop on an already-stopped handler is a no-op.
func (h *Handler) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state.Load() {
	case stateStopped:
		return nil
	case stateNew:
		// Never started: nothing to cancel, but the handler becomes
		// unusable all the same.
		h.state.Store(stateStopped)
		h.registry.Close()
		return nil
	}

	h.state.Store(stateStopping)
	close(h.stopCh)

	timer := time.NewTimer(h.stopGrace)
	defer timer.Stop()

	var waitErr error
	select {
	case <-h.doneCh:
	case <-ctx.Done():
		waitErr = domain.ErrInternalServer.WithDetails("canceled while waiting for sweeper exit").WithCause(ctx.Err())
	case <-timer.C:
		waitErr = domain.ErrInternalServer.WithDetails(
			fmt.Sprintf("sweeper did not exit within %s grace period", h.stopGrace))
	}
	if waitErr != nil {
		h.log.Error("session handler shutdown degraded", "error", waitErr)
	}

	dropped := h.registry.Close()
	h.state.Store(stateStopped)
	if h.metrics != nil {
		h.metrics.SessionsActive.Set(0)
	}

	h.log.Info("session handler stopped", "sessions_dropped", dropped)
	return waitErr
}

// CreateOrTouch creates a session record for id, or refreshes an existing
// one, updating its last-active timestamp. A non-nil payload replaces the
// stored payload. Returns a copy of the current record.
func (h *Handler) CreateOrTouch(ctx context.Context, id string, payload any) (*domain.SessionRecord, error) {
	if h.state.Load() != stateRunning {
		return nil, domain.ErrNotRunning
	}
	if err := domain.ValidateSessionID(id); err != nil {
		return nil, err
	}

	record, created, err := h.registry.CreateOrTouch(id, payload, time.Now())
	if err != nil {
		return nil, err
	}
	if created {
		if h.metrics != nil {
			h.metrics.SessionsCreated.Inc()
			h.metrics.SessionsActive.Set(float64(h.registry.Size(time.Now())))
		}
		logger.L(ctx).Debug("session created", "session_id", id)
	}
	return record, nil
}

// Get returns a copy of the session record for id. Absent and idle-expired
// sessions are indistinguishable: both report ErrSessionNotFound. Get never
// refreshes the last-active timestamp.
func (h *Handler) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	if h.state.Load() != stateRunning {
		return nil, domain.ErrNotRunning
	}
	if err := domain.ValidateSessionID(id); err != nil {
		return nil, err
	}
	return h.registry.Get(id, time.Now())
}

// Remove deletes the session record for id, reporting whether it existed.
// Idempotent.
func (h *Handler) Remove(ctx context.Context, id string) (bool, error) {
	if h.state.Load() != stateRunning {
		return false, domain.ErrNotRunning
	}
	if err := domain.ValidateSessionID(id); err != nil {
		return false, err
	}

	existed, err := h.registry.Remove(id)
	if err != nil {
		return false, err
	}
	if existed && h.metrics != nil {
		h.metrics.SessionsRemoved.Inc()
		h.metrics.SessionsActive.Set(float64(h.registry.Size(time.Now())))
	}
	return existed, nil
}

// Size returns the count of currently-registered, non-expired sessions.
// Reports 0 once the handler is stopped.
func (h *Handler) Size() int {
	return h.registry.Size(time.Now())
}

// sweepLoop is the expiry sweeper: one scan-and-evict cycle per tick until
// cancellation. It never returns an error to anyone; failures are logged and
// the loop continues on the next tick.
func (h *Handler) sweepLoop() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sweepTick()
		case <-h.stopCh:
			return
		}
	}
}

// sweepTick runs one sweep cycle. A panic in a tick is contained so the
// sweeper survives until cancellation.
func (h *Handler) sweepTick() {
	defer func() {
		if r := recover(); r != nil {
			if h.metrics != nil {
				h.metrics.SweepFailures.Inc()
			}
			h.log.Error("sweep tick failed", "panic", fmt.Sprint(r))
		}
	}()

	start := time.Now()
	evicted := h.registry.SweepOnce(start)
	elapsed := time.Since(start)

	if h.metrics != nil {
		h.metrics.SweepDuration.Observe(elapsed.Seconds())
		if evicted > 0 {
			h.metrics.SessionsExpired.Add(float64(evicted))
		}
		h.metrics.SessionsActive.Set(float64(h.registry.Size(time.Now())))
	}
	if evicted > 0 {
		h.log.Debug("swept idle sessions",
			"evicted", evicted,
			"remaining", h.registry.Size(time.Now()),
			"elapsed", elapsed.String())
	}
}
