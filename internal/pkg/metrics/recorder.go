package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// NoTransport is reported as the most used mode before any request succeeds.
const NoTransport = "None"

// ShippingSnapshot is a point-in-time view of the recorder.
type ShippingSnapshot struct {
	TotalRequests     int64            `json:"totalRequests"`
	AvgLatencyMs      int64            `json:"avgLatencyMs"`
	CacheHits         int64            `json:"cacheHits"`
	MostUsedTransport string           `json:"mostUsedTransport"`
	FailedRequests    int64            `json:"failedRequests"`
	ModeUsage         map[string]int64 `json:"modeUsage"`
}

// ShippingRecorder implements ports.MetricsRecorder. It keeps process-wide
// counters for the shipping metrics endpoint and mirrors them to prometheus.
type ShippingRecorder struct {
	totalRequests  atomic.Int64
	totalLatencyMs atomic.Int64
	failedRequests atomic.Int64
	cacheHits      atomic.Int64

	mu        sync.Mutex
	modeUsage map[string]int64
}

// NewShippingRecorder creates an empty recorder.
func NewShippingRecorder() *ShippingRecorder {
	return &ShippingRecorder{modeUsage: make(map[string]int64)}
}

// Record registers one shipping request. mode only counts on success.
func (r *ShippingRecorder) Record(latency time.Duration, mode string, success bool) {
	r.totalRequests.Add(1)
	r.totalLatencyMs.Add(latency.Milliseconds())
	ShippingLatency.Observe(latency.Seconds())

	if !success {
		r.failedRequests.Add(1)
		ShippingRequests.WithLabelValues("failure").Inc()
		return
	}
	ShippingRequests.WithLabelValues("success").Inc()

	if mode == "" {
		return
	}
	TransportModeSelected.WithLabelValues(mode).Inc()

	r.mu.Lock()
	r.modeUsage[mode]++
	r.mu.Unlock()
}

// CacheHit counts a hit on a shipping result cache.
func (r *ShippingRecorder) CacheHit(cache string) {
	r.cacheHits.Add(1)
	CacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss counts a miss on a shipping result cache.
func (r *ShippingRecorder) CacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// Snapshot returns the current totals. Ties for the most used mode go to the
// lexically smallest name.
func (r *ShippingRecorder) Snapshot() ShippingSnapshot {
	requests := r.totalRequests.Load()
	var avg int64
	if requests > 0 {
		avg = r.totalLatencyMs.Load() / requests
	}

	r.mu.Lock()
	usage := make(map[string]int64, len(r.modeUsage))
	mostUsed := NoTransport
	var top int64
	for mode, n := range r.modeUsage {
		usage[mode] = n
		if n > top || (n == top && mode < mostUsed) {
			top = n
			mostUsed = mode
		}
	}
	r.mu.Unlock()

	return ShippingSnapshot{
		TotalRequests:     requests,
		AvgLatencyMs:      avg,
		CacheHits:         r.cacheHits.Load(),
		MostUsedTransport: mostUsed,
		FailedRequests:    r.failedRequests.Load(),
		ModeUsage:         usage,
	}
}
