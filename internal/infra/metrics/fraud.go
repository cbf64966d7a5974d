package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(fraudCacheTotal, fraudOracleCalls, fraudOracleLatencyMs)
}

var fraudCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraud_cache_requests_total",
		Help: "Fraud verdict cache lookups by result.",
	},
	[]string{"result"}, // hit|miss|expired|error
)

var fraudOracleCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraud_oracle_calls_total",
		Help: "External fraud oracle calls by result.",
	},
	[]string{"result"}, // allow|deny|error
)

var fraudOracleLatencyMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "fraud_oracle_latency_ms",
		Help:    "Fraud oracle round-trip latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
)

func IncFraudCache(result string)  { fraudCacheTotal.WithLabelValues(norm(result)).Inc() }
func IncFraudOracle(result string) { fraudOracleCalls.WithLabelValues(norm(result)).Inc() }
func ObserveFraudOracleLatency(ms float64) {
	fraudOracleLatencyMs.Observe(ms)
}
