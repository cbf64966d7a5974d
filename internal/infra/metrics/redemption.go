package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(redemptionsTotal, redemptionLatencyMs, capacityRetriesTotal)
}

var redemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "promo_redemptions_total",
		Help: "Redemption attempts by promo mode and terminal outcome.",
	},
	[]string{"mode", "outcome"}, // outcome: granted|not_found|inactive|targeting_mismatch|fraud_denied|capacity_exceeded|upstream_error|conflict|error
)

var redemptionLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "promo_redemption_latency_ms",
		Help:    "End-to-end redemption latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
	},
	[]string{"mode"},
)

var capacityRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "promo_capacity_guard_retries_total",
		Help: "Capacity-guard transactions retried after contention.",
	},
)

func IncRedemption(mode, outcome string) {
	redemptionsTotal.WithLabelValues(norm(mode), norm(outcome)).Inc()
}

func ObserveRedemptionLatency(mode string, ms float64) {
	redemptionLatencyMs.WithLabelValues(norm(mode)).Observe(ms)
}

func IncCapacityRetry() { capacityRetriesTotal.Inc() }
