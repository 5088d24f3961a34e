package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestDuration observes inbound HTTP request latency.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "blocksd_http_request_duration_seconds",
	Help:    "Inbound HTTP request latency, by method and status.",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
}, []string{"method", "status"})

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware wraps the provided handler and records request timing.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		RequestDuration.WithLabelValues(r.Method, strconv.Itoa(srw.status)).
			Observe(time.Since(start).Seconds())
	})
}
