package benchmark

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/calcmcp/calcmcp-go/internal/core/domain"
	"github.com/calcmcp/calcmcp-go/internal/core/session"
)

// SessionCounts defines the session counts for benchmarking.
var SessionCounts = []int{5000, 10000, 50000, 100000, 500000}

// SmallSessionCounts for quick benchmarks.
var SmallSessionCounts = []int{1000, 5000, 10000}

// prefillRegistry prefills a registry with active sessions.
func prefillRegistry(r *session.Registry, count int) []string {
	ids := make([]string, count)
	now := time.Now()
	for i := 0; i < count; i++ {
		id, err := domain.GenerateSessionID()
		if err != nil {
			panic(err)
		}
		ids[i] = id
		r.CreateOrTouch(id, nil, now)
	}
	return ids
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithSessionCounts runs a benchmark function with various session counts.
func runWithSessionCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("sessions_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
