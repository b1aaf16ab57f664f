package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics. Module-specific metrics
// live with their modules.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	AccountsCreated *prometheus.CounterVec
	PartialAccounts *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "farmgate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by path",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"path"}),
		AccountsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_accounts_created_total",
			Help: "Total number of accounts materialized, by role",
		}, []string{"role"}),
		PartialAccounts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_accounts_partial_total",
			Help: "Materializations that stopped after the identity was created, by failed step",
		}, []string{"step"}),
	}
}

// ObserveEndpointLatency records the duration of one request.
func (m *Metrics) ObserveEndpointLatency(path string, d time.Duration) {
	if m != nil {
		m.EndpointLatency.WithLabelValues(path).Observe(d.Seconds())
	}
}

// IncrementAccountsCreated increments the accounts created counter by 1
func (m *Metrics) IncrementAccountsCreated(role string) {
	if m != nil {
		m.AccountsCreated.WithLabelValues(role).Inc()
	}
}

// IncrementPartialAccount counts a materialization left incomplete at step.
func (m *Metrics) IncrementPartialAccount(step string) {
	if m != nil {
		m.PartialAccounts.WithLabelValues(step).Inc()
	}
}
