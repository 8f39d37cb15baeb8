package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		pinSessionsTotal,
		pinVerifyTotal,
	)
}

var (
	pinSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pin_sessions_total",
			Help: "PIN authorization sessions by final state (authorized/cancelled/mismatch).",
		},
		[]string{"state"},
	)

	pinVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pin_verify_total",
			Help: "Remote PIN verify calls by verdict (ok/rejected/error).",
		},
		[]string{"verdict"},
	)
)

func IncPinSession(state string)  { pinSessionsTotal.WithLabelValues(norm(state)).Inc() }
func IncPinVerify(verdict string) { pinVerifyTotal.WithLabelValues(norm(verdict)).Inc() }
