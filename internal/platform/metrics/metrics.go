// Package metrics holds the Prometheus instruments for ledger operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups all instruments registered for the service.
type Metrics struct {
	Mints      prometheus.Counter
	BatchMints prometheus.Counter
	Burns      prometheus.Counter
	Transfers  prometheus.Counter

	// Rejections counts refused operations, labeled by error code.
	Rejections *prometheus.CounterVec

	// PausedState is 1 while the pause gate is closed, 0 otherwise.
	PausedState prometheus.Gauge
}

// New registers all instruments on the given registerer. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mints: factory.NewCounter(prometheus.CounterOpts{
			Name: "colonx_mints_total",
			Help: "Total number of successful mint operations.",
		}),
		BatchMints: factory.NewCounter(prometheus.CounterOpts{
			Name: "colonx_batch_mints_total",
			Help: "Total number of successful batch mint operations.",
		}),
		Burns: factory.NewCounter(prometheus.CounterOpts{
			Name: "colonx_burns_total",
			Help: "Total number of successful burn operations.",
		}),
		Transfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "colonx_transfers_total",
			Help: "Total number of successful transfer operations.",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "colonx_rejected_operations_total",
			Help: "Total number of refused operations by error code.",
		}, []string{"code"}),
		PausedState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "colonx_paused",
			Help: "Whether the pause gate is closed (1) or open (0).",
		}),
	}
}
