// Package metric provides Prometheus metrics for CalcMCP.
package metric

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_CountersStartAtZero(t *testing.T) {
	m := New()

	if got := testutil.ToFloat64(m.SessionsCreated); got != 0 {
		t.Errorf("SessionsCreated = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.SessionsActive); got != 0 {
		t.Errorf("SessionsActive = %v, want 0", got)
	}
}

func TestMetrics_Increment(t *testing.T) {
	m := New()

	m.SessionsCreated.Inc()
	m.SessionsCreated.Inc()
	m.SessionsActive.Set(5)
	m.ToolInvocations.WithLabelValues("add", "ok").Inc()

	if got := testutil.ToFloat64(m.SessionsCreated); got != 2 {
		t.Errorf("SessionsCreated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SessionsActive); got != 5 {
		t.Errorf("SessionsActive = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.ToolInvocations.WithLabelValues("add", "ok")); got != 1 {
		t.Errorf("ToolInvocations{add,ok} = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SessionsExpired.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "calcmcp_sessions_expired_total 1") {
		t.Errorf("exposition missing expired counter, body:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("exposition missing Go collector metrics")
	}
}

func TestNew_IsolatedRegistries(t *testing.T) {
	a := New()
	b := New()

	a.SessionsCreated.Inc()
	if got := testutil.ToFloat64(b.SessionsCreated); got != 0 {
		t.Errorf("registries should be isolated, b.SessionsCreated = %v", got)
	}
}
