package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed on GET /metrics
// (spec.md's observability surface, left unspecified at the CLI/HTTP
// collaborator level, filled in here against the teacher's pack-mate
// monitoring stack).
type Metrics struct {
	TrialsTotal     prometheus.Counter
	BestUnsatWeight prometheus.Gauge
	FlipsTotal      prometheus.Counter
}

// NewMetrics registers a fresh set of collectors against the default
// registry, for use by cmd/walksat's serve subcommand.
func NewMetrics() *Metrics {
	return NewMetricsOn(prometheus.DefaultRegisterer)
}

// NewMetricsOn registers against reg instead of the default registry,
// so tests (and anything else constructing more than one Metrics per
// process) can use a private prometheus.NewRegistry().
func NewMetricsOn(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TrialsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "walksat_trials_total",
			Help: "Number of WalkSAT trials completed across all workers.",
		}),
		BestUnsatWeight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "walksat_best_unsat_weight",
			Help: "Best unsatisfied clause weight of the most recently observed trial.",
		}),
		FlipsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "walksat_flips_total",
			Help: "Total variable flips performed across all trials.",
		}),
	}
}

// Observe records one trial's result.
func (m *Metrics) Observe(bestUnsatWeight float64, flips int) {
	m.TrialsTotal.Inc()
	m.FlipsTotal.Add(float64(flips))
	m.BestUnsatWeight.Set(bestUnsatWeight)
}
