package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/universo-platformo/updl-engine/internal/events"
	"github.com/universo-platformo/updl-engine/internal/version"
)

var metricsState = &MetricsState{}

// MetricsState holds runtime counters for the /metrics endpoint.
type MetricsState struct {
	mu             sync.RWMutex
	startTime      time.Time
	buildsTotal    int64
	buildsFailed   int64
	viewerRequests int64
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
	metricsState.buildsTotal = 0
	metricsState.buildsFailed = 0
	metricsState.viewerRequests = 0
}

func countBuild(success bool) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.buildsTotal++
	if !success {
		metricsState.buildsFailed++
	}
}

func countViewer() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.viewerRequests++
}

// metricsHandler serves plaintext counters in Prometheus exposition
// format.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	metricsState.mu.RLock()
	uptime := time.Since(metricsState.startTime).Seconds()
	builds := metricsState.buildsTotal
	failed := metricsState.buildsFailed
	viewers := metricsState.viewerRequests
	metricsState.mu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP updl_engine_uptime_seconds Seconds since server start.\n")
	fmt.Fprintf(w, "# TYPE updl_engine_uptime_seconds gauge\n")
	fmt.Fprintf(w, "updl_engine_uptime_seconds %f\n", uptime)
	fmt.Fprintf(w, "# HELP updl_engine_builds_total Total build requests processed.\n")
	fmt.Fprintf(w, "# TYPE updl_engine_builds_total counter\n")
	fmt.Fprintf(w, "updl_engine_builds_total %d\n", builds)
	fmt.Fprintf(w, "# HELP updl_engine_builds_failed_total Build requests that returned a failed envelope.\n")
	fmt.Fprintf(w, "# TYPE updl_engine_builds_failed_total counter\n")
	fmt.Fprintf(w, "updl_engine_builds_failed_total %d\n", failed)
	fmt.Fprintf(w, "# HELP updl_engine_viewer_requests_total Published documents served.\n")
	fmt.Fprintf(w, "# TYPE updl_engine_viewer_requests_total counter\n")
	fmt.Fprintf(w, "updl_engine_viewer_requests_total %d\n", viewers)
	fmt.Fprintf(w, "# HELP updl_engine_event_subscribers Live websocket event subscribers.\n")
	fmt.Fprintf(w, "# TYPE updl_engine_event_subscribers gauge\n")
	fmt.Fprintf(w, "updl_engine_event_subscribers %d\n", events.SubscriberCount())
	fmt.Fprintf(w, "# HELP updl_engine_info Version information.\n")
	fmt.Fprintf(w, "# TYPE updl_engine_info gauge\n")
	fmt.Fprintf(w, "updl_engine_info{version=%q} 1\n", version.Version)
}
