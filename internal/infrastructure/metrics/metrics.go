// Package metrics exposes the prometheus collectors for the ledger engine
// and the HTTP surface. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "metric"

type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	transferred *prometheus.CounterVec
	payouts     prometheus.Counter
	poolBalance prometheus.Gauge
	scores      prometheus.Histogram
	requests    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Ledger engine operations by name and outcome code.",
		}, []string{"operation", "outcome"}),
		transferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_transferred_amount_total",
			Help:      "Money moved between balances, by transaction type.",
		}, []string{"type"}),
		payouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insurance_payouts_total",
			Help:      "Defaults for which the insurance pool paid out.",
		}),
		poolBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "insurance_pool_balance",
			Help:      "Last observed insurance pool balance.",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   prometheus.LinearBuckets(300, 50, 12),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(m.operations, m.transferred, m.payouts, m.poolBalance, m.scores, m.requests, m.durations)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Transferred(txType string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.transferred.WithLabelValues(txType).Add(amount.InexactFloat64())
}

func (m *Metrics) Payout() {
	if m == nil {
		return
	}
	m.payouts.Inc()
}

func (m *Metrics) PoolBalance(balance decimal.Decimal) {
	if m == nil {
		return
	}
	m.poolBalance.Set(balance.InexactFloat64())
}

func (m *Metrics) Score(score int) {
	if m == nil {
		return
	}
	m.scores.Observe(float64(score))
}

func (m *Metrics) Request(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, status).Inc()
	m.durations.WithLabelValues(route, method).Observe(seconds)
}
