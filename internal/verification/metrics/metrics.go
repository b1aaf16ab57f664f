package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the verification pipeline. All methods
// are safe on a nil receiver so tests can skip registration.
type Metrics struct {
	VendorLatency    *prometheus.HistogramVec
	VendorErrors     *prometheus.CounterVec
	BudgetCommitted  prometheus.Counter
	BudgetDenied     *prometheus.CounterVec
	BudgetUsed       *prometheus.GaugeVec
	Outcomes         *prometheus.CounterVec
	CircuitOpen      *prometheus.GaugeVec
	AttemptsExhausts prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		VendorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "farmgate_verification_vendor_latency_seconds",
			Help:    "Latency of vision vendor calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		}, []string{"vendor"}),
		VendorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_verification_vendor_errors_total",
			Help: "Vision vendor failures by category",
		}, []string{"vendor", "category"}),
		BudgetCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "farmgate_verification_face_budget_committed_total",
			Help: "Face comparison calls charged against the vendor budget",
		}),
		BudgetDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_verification_face_budget_denied_total",
			Help: "Face comparisons refused because a budget window was spent",
		}, []string{"window"}),
		BudgetUsed: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "farmgate_verification_face_budget_used",
			Help: "Face comparison calls charged in the current budget window",
		}, []string{"window"}),
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_verification_outcomes_total",
			Help: "Verification attempts by terminal state",
		}, []string{"state"}),
		CircuitOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "farmgate_verification_circuit_open",
			Help: "1 while the vendor circuit breaker is open",
		}, []string{"vendor"}),
		AttemptsExhausts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "farmgate_verification_attempts_exhausted_total",
			Help: "Provisional registrations discarded after the last failed attempt",
		}),
	}
}

func (m *Metrics) ObserveVendorLatency(vendor string, d time.Duration) {
	if m != nil {
		m.VendorLatency.WithLabelValues(vendor).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementVendorError(vendor, category string) {
	if m != nil {
		m.VendorErrors.WithLabelValues(vendor, category).Inc()
	}
}

func (m *Metrics) IncrementBudgetCommitted() {
	if m != nil {
		m.BudgetCommitted.Inc()
	}
}

func (m *Metrics) IncrementBudgetDenied(window string) {
	if m != nil {
		m.BudgetDenied.WithLabelValues(window).Inc()
	}
}

func (m *Metrics) SetBudgetUsed(daily, monthly int) {
	if m != nil {
		m.BudgetUsed.WithLabelValues("daily").Set(float64(daily))
		m.BudgetUsed.WithLabelValues("monthly").Set(float64(monthly))
	}
}

func (m *Metrics) IncrementOutcome(state string) {
	if m != nil {
		m.Outcomes.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) SetCircuitOpen(vendor string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.CircuitOpen.WithLabelValues(vendor).Set(v)
}

func (m *Metrics) IncrementAttemptsExhausted() {
	if m != nil {
		m.AttemptsExhausts.Inc()
	}
}
