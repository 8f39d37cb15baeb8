package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		settlementsTotal,
		settlementsDeduped,
		settlementAmountTotal,
	)
}

var (
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Settlement operations by kind and outcome (applied/failed).",
		},
		[]string{"kind", "outcome"},
	)

	settlementsDeduped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_deduped_total",
			Help: "Settlement calls short-circuited because the (kind, reference) pair had already run.",
		},
		[]string{"kind"},
	)

	settlementAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_amount_total",
			Help: "Total monetary value applied by successful settlements, by kind.",
		},
		[]string{"kind"},
	)
)

func IncSettlement(kind, outcome string) {
	settlementsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func IncSettlementDeduped(kind string) {
	settlementsDeduped.WithLabelValues(norm(kind)).Inc()
}

func AddSettlementAmount(kind string, amount int64) {
	settlementAmountTotal.WithLabelValues(norm(kind)).Add(float64(amount))
}
