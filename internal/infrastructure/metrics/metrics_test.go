package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.CashIssued == nil || m.HTTPRequests == nil || m.RequestDecisions == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewIsolatedPerRegistry(t *testing.T) {
	first := New(prometheus.NewRegistry())
	second := New(prometheus.NewRegistry())

	first.CashIssued.Inc()

	if got := testutil.ToFloat64(first.CashIssued); got != 1 {
		t.Fatalf("expected first counter at 1, got %v", got)
	}
	if got := testutil.ToFloat64(second.CashIssued); got != 0 {
		t.Fatalf("expected second counter untouched, got %v", got)
	}
}
