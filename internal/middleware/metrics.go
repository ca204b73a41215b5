package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// counters are process-wide; /metrics reports them as a JSON snapshot.
var counters struct {
	requests   atomic.Uint64
	inFlight   atomic.Int64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	analyses   atomic.Uint64
	running    atomic.Int64
	analysisKO atomic.Uint64
	analysisMS atomic.Uint64
}

var startedAt = time.Now()

// Snapshot is the /metrics body.
type Snapshot struct {
	RequestsTotal      uint64  `json:"requests_total"`
	RequestsInProgress int64   `json:"requests_in_progress"`
	RequestsSuccess    uint64  `json:"requests_success"`
	RequestsFailed     uint64  `json:"requests_failed"`
	AnalysesTotal      uint64  `json:"analyses_total"`
	AnalysesRunning    int64   `json:"analyses_running"`
	AnalysesFailed     uint64  `json:"analyses_failed"`
	AnalysisAvgMS      float64 `json:"analysis_avg_ms"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
	Goroutines         int     `json:"goroutines"`
	HeapAllocBytes     uint64  `json:"heap_alloc_bytes"`
	NumGC              uint32  `json:"num_gc"`
}

func CurrentMetrics() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		RequestsTotal:      counters.requests.Load(),
		RequestsInProgress: counters.inFlight.Load(),
		RequestsSuccess:    counters.succeeded.Load(),
		RequestsFailed:     counters.failed.Load(),
		AnalysesTotal:      counters.analyses.Load(),
		AnalysesRunning:    counters.running.Load(),
		AnalysesFailed:     counters.analysisKO.Load(),
		UptimeSeconds:      time.Since(startedAt).Seconds(),
		Goroutines:         runtime.NumGoroutine(),
		HeapAllocBytes:     mem.HeapAlloc,
		NumGC:              mem.NumGC,
	}
	if s.AnalysesTotal > 0 {
		s.AnalysisAvgMS = float64(counters.analysisMS.Load()) / float64(s.AnalysesTotal)
	}
	return s
}

// AnalysisRecorder feeds the analysis counters; the analysis service reports
// to it.
type AnalysisRecorder struct{}

func (AnalysisRecorder) AnalysisStarted() {
	counters.analyses.Add(1)
	counters.running.Add(1)
}

func (AnalysisRecorder) AnalysisFinished(ok bool, d time.Duration) {
	counters.running.Add(-1)
	if !ok {
		counters.analysisKO.Add(1)
	}
	if d > 0 {
		counters.analysisMS.Add(uint64(d.Milliseconds()))
	}
}

// MetricsMiddleware counts requests by outcome. 4xx and 5xx are failures.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counters.requests.Add(1)
		counters.inFlight.Add(1)
		defer counters.inFlight.Add(-1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.statusCode < http.StatusBadRequest {
			counters.succeeded.Add(1)
		} else {
			counters.failed.Add(1)
		}
	})
}

func MetricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(CurrentMetrics())
}
