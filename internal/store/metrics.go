package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opLoad   = "load"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Metrics are shared by every store built from the same registry. A nil
// *Metrics records nothing.
type Metrics struct {
	operations   *prometheus.CounterVec
	snapshotSize prometheus.Gauge
}

// NewMetrics registers the store collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_certificate_operations_total",
			Help: "certificate store operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		snapshotSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_certificate_snapshot_size",
			Help: "number of certificates in the most recently loaded snapshot",
		}),
	}
}

func (m *Metrics) observe(op string, outcome Outcome) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome.String()).Inc()
}

func (m *Metrics) snapshot(n int) {
	if m == nil {
		return
	}
	m.snapshotSize.Set(float64(n))
}
