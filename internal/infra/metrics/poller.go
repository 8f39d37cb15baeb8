package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		pollerTicksTotal,
		pollerTerminalTotal,
		pollerActive,
		pollerTickLatency,
	)
}

var (
	pollerTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_ticks_total",
			Help: "Status-check ticks by result (paid/unpaid/failed/expired/unknown/error/skipped).",
		},
		[]string{"result"},
	)

	pollerTerminalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_terminal_total",
			Help: "Pollers reaching a terminal state (success/failed/exhausted).",
		},
		[]string{"state"},
	)

	pollerActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poller_active",
			Help: "Pollers currently registered and running.",
		},
	)

	pollerTickLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poller_tick_latency_ms",
			Help:    "Remote status-check latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
	)
)

func IncPollerTick(result string)    { pollerTicksTotal.WithLabelValues(norm(result)).Inc() }
func IncPollerTerminal(state string) { pollerTerminalTotal.WithLabelValues(norm(state)).Inc() }
func SetActivePollers(n int)         { pollerActive.Set(float64(n)) }
func ObserveTickLatency(ms float64)  { pollerTickLatency.Observe(ms) }
