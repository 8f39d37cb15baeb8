package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		reconcilerRunsTotal,
		reconcilerRecheckedTotal,
	)
}

var (
	reconcilerRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciler_runs_total",
			Help: "Journal scan passes executed by the reconciler.",
		},
	)

	reconcilerRecheckedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_rechecked_total",
			Help: "Stale pending references re-checked, by outcome (resolved/still_pending/error).",
		},
		[]string{"outcome"},
	)
)

func IncReconcilerRun()               { reconcilerRunsTotal.Inc() }
func IncReconcilerRecheck(out string) { reconcilerRecheckedTotal.WithLabelValues(norm(out)).Inc() }
