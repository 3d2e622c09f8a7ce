package budget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the budget subsystem.
type Metrics struct {
	// Admission decisions
	admissionChecks *prometheus.CounterVec
	refusals        *prometheus.CounterVec

	// Provider balance
	providerBalance prometheus.Gauge
	balanceFailures prometheus.Counter

	// Pacing
	pacingWait prometheus.Histogram

	factory promauto.Factory
}

// NewMetrics creates a Metrics instance registered against reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		admissionChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditgate_admission_checks_total",
				Help: "Total number of admission checks performed",
			},
			[]string{"action", "result"},
		),

		refusals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditgate_refusals_total",
				Help: "Total number of operations refused or skipped on budget grounds",
			},
			[]string{"action", "mode"},
		),

		providerBalance: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "creditgate_provider_balance_credits",
				Help: "Provider credit balance from the most recent observation",
			},
		),

		balanceFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "creditgate_balance_read_failures_total",
				Help: "Total number of failed provider balance reads",
			},
		),

		pacingWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "creditgate_pacing_wait_seconds",
				Help:    "Time spent waiting for pacing tokens before proceeding",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4.5m
			},
		),

		factory: factory,
	}
}

// RecordAdmissionCheck records one admission decision.
func (m *Metrics) RecordAdmissionCheck(action string, result string) {
	m.admissionChecks.WithLabelValues(action, result).Inc()
}

// RecordRefusal records a refused (hard mode) or skipped (soft mode) operation.
func (m *Metrics) RecordRefusal(action string, mode string) {
	m.refusals.WithLabelValues(action, mode).Inc()
}

// ObserveBalance updates the provider balance gauge.
func (m *Metrics) ObserveBalance(balance int64) {
	m.providerBalance.Set(float64(balance))
}

// RecordBalanceFailure records a failed provider balance read.
func (m *Metrics) RecordBalanceFailure() {
	m.balanceFailures.Inc()
}

// RecordPacingWait records how long an operation waited for pacing tokens.
func (m *Metrics) RecordPacingWait(seconds float64) {
	m.pacingWait.Observe(seconds)
}

// RegisterTokenGauge exposes the current pacing token level as a gauge
// backed by the given read function.
func (m *Metrics) RegisterTokenGauge(available func() float64) {
	m.factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "creditgate_pacing_tokens",
			Help: "Tokens currently available in the pacing bucket",
		},
		available,
	)
}
