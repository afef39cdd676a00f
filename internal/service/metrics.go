package service

import (
	"errors"

	"github.com/msomdec/proconnect/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for both stores. Collectors are
// registered on a private registry so several instances can coexist in
// one process. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Operations      *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	StorageFailures prometheus.Counter
	StorageDegraded prometheus.Gauge
}

// NewMetrics creates and registers the collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Store operations by store, operation and outcome.",
			},
			[]string{"store", "operation", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_created_total",
				Help:      "Notifications generated as a side effect of other operations.",
			},
			[]string{"type"},
		),
		StorageFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_write_failures_total",
				Help:      "Failed writes to local storage.",
			},
		),
		StorageDegraded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "storage_degraded",
				Help:      "1 when persistence is disabled and the stores run in memory only.",
			},
		),
	}
	m.Registry.MustRegister(m.Operations, m.Notifications, m.StorageFailures, m.StorageDegraded)
	return m
}

func (m *Metrics) observe(store, operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(store, operation, outcome(err)).Inc()
}

func (m *Metrics) notified(t domain.NotificationType) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) storageFailed() {
	if m == nil {
		return
	}
	m.StorageFailures.Inc()
}

func (m *Metrics) setDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.StorageDegraded.Set(1)
	} else {
		m.StorageDegraded.Set(0)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrAlreadyVoted):
		return "invalid_argument"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_identity"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}
