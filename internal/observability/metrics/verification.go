package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"docshield/internal/core/domain"
)

// VerificationMetrics tracks verdict outcomes, decode strategy usage, and
// registry lookup latency. Implements usecase.VerdictObserver.
type VerificationMetrics struct {
	service string

	verdictTotal   *prometheus.CounterVec
	decodeTotal    *prometheus.CounterVec
	lookupDuration prometheus.Histogram
}

func NewVerificationMetrics(service string, registry *prometheus.Registry) *VerificationMetrics {
	verdictTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docshield",
			Subsystem: "verify",
			Name:      "verdicts_total",
			Help:      "Total verification verdicts by verdict and primary reason.",
		},
		[]string{"service", "verdict", "reason"},
	)
	decodeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docshield",
			Subsystem: "verify",
			Name:      "qr_decode_total",
			Help:      "QR decode attempts by winning strategy; strategy=none when exhausted.",
		},
		[]string{"service", "strategy", "status"},
	)
	lookupDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docshield",
			Subsystem: "verify",
			Name:      "registry_lookup_duration_seconds",
			Help:      "Registry lookup duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(verdictTotal, decodeTotal, lookupDuration)

	return &VerificationMetrics{
		service:        service,
		verdictTotal:   verdictTotal,
		decodeTotal:    decodeTotal,
		lookupDuration: lookupDuration,
	}
}

func (m *VerificationMetrics) ObserveVerdict(verdict domain.Verdict, reason domain.ReasonCode) {
	m.verdictTotal.WithLabelValues(m.service, string(verdict), string(reason)).Inc()
}

func (m *VerificationMetrics) ObserveDecode(strategy string, success bool) {
	status := "success"
	if !success {
		status = "exhausted"
	}
	if strategy == "" {
		strategy = "none"
	}
	m.decodeTotal.WithLabelValues(m.service, strategy, status).Inc()
}

func (m *VerificationMetrics) ObserveLookup(d time.Duration) {
	m.lookupDuration.Observe(d.Seconds())
}
