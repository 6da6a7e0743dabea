package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/ledgerreplay/internal/domain"
)

func TestNewWithRegistryRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegistry(registry)

	if m.RebuildsTotal == nil || m.HTTPRequests == nil || m.SkippedRecords == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObserveRebuild(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveRebuild(domain.SubjectKindEmployee, "ok", 120*time.Millisecond, 7)
	m.ObserveRebuild(domain.SubjectKindEmployee, "ok", 80*time.Millisecond, 3)
	m.ObserveRebuild(domain.SubjectKindBank, "failed", time.Second, 0)

	if got := testutil.ToFloat64(m.RebuildsTotal.WithLabelValues("employee", "ok")); got != 2 {
		t.Fatalf("expected 2 ok employee rebuilds, got %v", got)
	}
	if got := testutil.ToFloat64(m.RebuildsTotal.WithLabelValues("bank", "failed")); got != 1 {
		t.Fatalf("expected 1 failed bank rebuild, got %v", got)
	}
}

func TestIncSkipped(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncSkipped(domain.SubjectKindEmployee, "mirror", domain.SourceTypeAdvance)
	m.IncSkipped(domain.SubjectKindEmployee, "mirror", domain.SourceTypeAdvance)

	counter := m.SkippedRecords.WithLabelValues("employee", "mirror", "employee_advance")
	if got := testutil.ToFloat64(counter); got != 2 {
		t.Fatalf("expected 2 skipped records, got %v", got)
	}
}

func TestIncSourceEvent(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncSourceEvent(domain.SourceTypePayroll, domain.SourceActionUpdated)

	if got := testutil.ToFloat64(m.SourceEvents.WithLabelValues("payroll", "updated")); got != 1 {
		t.Fatalf("expected 1 source event, got %v", got)
	}
}

func TestIncRateLimitHit(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncRateLimitHit("10.0.0.1")

	if got := testutil.ToFloat64(m.RateLimitHits.WithLabelValues("10.0.0.1")); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}
}
