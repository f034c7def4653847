package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

var _ usecase.LedgerMetrics = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.EntriesApplied == nil || m.Balance == nil || m.RateResolutions == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.RateResolved(domain.RateExact)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestLedgerMetricsRecord(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	entry := &domain.Entry{
		Type:         domain.EntryTypeAddMoney,
		Currency:     "USD",
		BaseCurrency: "NGN",
		BaseEquiv:    decimal.NewFromInt(82500),
	}
	m.EntryApplied(entry, 5*time.Millisecond)
	m.EntryApplied(entry, 5*time.Millisecond)
	m.EntryRejected("insufficient_funds")
	m.BalanceChanged("USD", decimal.NewFromInt(150))
	m.RateResolved(domain.RateDefaulted)
	m.StateRepaired("balances")
	m.RateLimited()

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"applied", m.EntriesApplied.WithLabelValues("add_money", "USD"), 2},
		{"rejected", m.EntryRejections.WithLabelValues("insufficient_funds"), 1},
		{"balance", m.Balance.WithLabelValues("USD"), 150},
		{"defaulted", m.RateResolutions.WithLabelValues("defaulted"), 1},
		{"repairs", m.StateRepairs.WithLabelValues("balances"), 1},
		{"rate limit", m.RateLimitHits, 1},
	}

	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.collector); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
