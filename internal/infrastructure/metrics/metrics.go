package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

// Metrics holds the wallet's Prometheus metrics. It implements
// usecase.LedgerMetrics.
type Metrics struct {
	// Ledger metrics
	EntriesApplied  *prometheus.CounterVec
	EntryRejections *prometheus.CounterVec
	ApplyDuration   prometheus.Histogram
	BaseAmount      *prometheus.HistogramVec
	Balance         *prometheus.GaugeVec

	// Rate metrics
	RateResolutions *prometheus.CounterVec

	// Storage metrics
	StateRepairs *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EntriesApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_entries_applied_total",
				Help: "Total number of entries applied to the ledger",
			},
			[]string{"type", "currency"},
		),
		EntryRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_entry_rejections_total",
				Help: "Total number of entries rejected by reason",
			},
			[]string{"reason"},
		),
		ApplyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxwallet_apply_duration_seconds",
			Help:    "Duration of entry application",
			Buckets: prometheus.DefBuckets,
		}),
		BaseAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxwallet_entry_base_amount",
				Help:    "Base currency equivalent of applied entries",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"base_currency"},
		),
		Balance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxwallet_balance",
				Help: "Current balance per currency",
			},
			[]string{"currency"},
		),
		RateResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_rate_resolutions_total",
				Help: "Total rate lookups by how the rate was obtained",
			},
			[]string{"source"},
		),
		StateRepairs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_state_repairs_total",
				Help: "Total repairs of malformed persisted records",
			},
			[]string{"record"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxwallet_rate_limit_hits_total",
			Help: "Total requests refused by the rate limiter",
		}),
	}
}

// EntryApplied records an applied entry.
func (m *Metrics) EntryApplied(entry *domain.Entry, duration time.Duration) {
	m.EntriesApplied.WithLabelValues(string(entry.Type), entry.Currency).Inc()
	m.ApplyDuration.Observe(duration.Seconds())
	m.BaseAmount.WithLabelValues(entry.BaseCurrency).Observe(entry.BaseEquiv.InexactFloat64())
}

// EntryRejected records a refused entry.
func (m *Metrics) EntryRejected(reason string) {
	m.EntryRejections.WithLabelValues(reason).Inc()
}

// BalanceChanged records the new balance of currency.
func (m *Metrics) BalanceChanged(currency string, balance decimal.Decimal) {
	m.Balance.WithLabelValues(currency).Set(balance.InexactFloat64())
}

// RateResolved records a rate lookup.
func (m *Metrics) RateResolved(source domain.RateSource) {
	m.RateResolutions.WithLabelValues(string(source)).Inc()
}

// StateRepaired records the repair of a persisted record.
func (m *Metrics) StateRepaired(record string) {
	m.StateRepairs.WithLabelValues(record).Inc()
}

// RateLimited records a refused request.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
