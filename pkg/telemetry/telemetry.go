// Package telemetry registers the server's prometheus collectors.
// Metrics are exported on /metrics via promhttp.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by method/path/status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synapse_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "path", "status"})

	// RequestDuration observes request latency per route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "synapse_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// Completions counts successful completion-API calls.
	Completions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synapse_completions_total",
		Help: "Successful completion API calls.",
	})

	// CompletionFailures counts completion-API calls that failed and
	// degraded to a fallback reply or a reported branch result.
	CompletionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synapse_completion_failures_total",
		Help: "Failed completion API calls.",
	})

	// StoreBytes is the on-disk size of the topic database.
	StoreBytes = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "synapse_store_disk_bytes",
		Help: "On-disk size of the topic store.",
	}, func() float64 { return storeDiskUsage() })
)

// storeDiskUsage is swapped in by main once the store is open; the
// indirection avoids an import cycle with pkg/store.
var storeDiskUsage = func() float64 { return 0 }

// SetStoreUsageFunc installs the gauge source for StoreBytes.
func SetStoreUsageFunc(f func() float64) {
	if f != nil {
		storeDiskUsage = f
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency per route template.
func Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
