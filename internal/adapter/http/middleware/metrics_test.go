package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/ledgerreplay/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		expected   string
	}{
		{
			name:       "normalizes subject path",
			method:     http.MethodGet,
			path:       "/api/v1/employees/E123/balance",
			statusCode: http.StatusTeapot,
			expected:   "/api/v1/employees/:id/balance",
		},
		{
			name:       "keeps non-matching path as-is",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
			expected:   "/health",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.NewWithRegistry(prometheus.NewRegistry())

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			NewMetrics(m)(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(m.HTTPInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			counter := m.HTTPRequests.WithLabelValues(tc.method, tc.expected, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(NewMetrics(m))
	r.Get("/api/v1/{kind}/{id}/entries", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/banks/B7/entries", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/{kind}/{id}/entries", "200")
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected counter under route pattern, got %v", got)
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "employee path without suffix",
			input:    "/api/v1/employees/E1",
			expected: "/api/v1/employees/:id",
		},
		{
			name:     "bank path with suffix",
			input:    "/api/v1/banks/B1/statement",
			expected: "/api/v1/banks/:id/statement",
		},
		{
			name:     "rebuild collection path",
			input:    "/api/v1/banks/rebuild",
			expected: "/api/v1/banks/rebuild",
		},
		{
			name:     "branch path",
			input:    "/api/v1/branches/North/bank-balances",
			expected: "/api/v1/branches/:branch/bank-balances",
		},
		{
			name:     "non-matching path",
			input:    "/api/v1/source-events",
			expected: "/api/v1/source-events",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
