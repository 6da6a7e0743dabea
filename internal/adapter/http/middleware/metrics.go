package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerreplay/internal/infrastructure/metrics"
)

// NewMetrics returns middleware that records HTTP metrics.
func NewMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			path := routePath(r)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routePath prefers the matched chi route pattern and falls back to
// normalizePath when routing did not happen.
func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath replaces subject ids and branch names to avoid high
// cardinality: /api/v1/employees/E1/entries -> /api/v1/employees/:id/entries.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	// ["", "api", "v1", collection, id, ...]
	if len(parts) < 5 || parts[1] != "api" || parts[2] != "v1" || parts[4] == "" {
		return path
	}

	switch parts[3] {
	case "employees", "banks":
		if parts[4] == "rebuild" {
			return path
		}
		parts[4] = ":id"
	case "branches":
		parts[4] = ":branch"
	default:
		return path
	}

	return strings.Join(parts, "/")
}
