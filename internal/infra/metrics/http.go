package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal, httpLatencyMs) }

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status.",
	},
	[]string{"route", "method", "status"},
)

var httpLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_latency_ms",
		Help:    "HTTP request latency distribution in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	},
	[]string{"route"},
)

func ObserveHTTPRequest(route, method string, status int, ms float64) {
	httpRequestsTotal.WithLabelValues(norm(route), norm(method), strconv.Itoa(status)).Inc()
	httpLatencyMs.WithLabelValues(norm(route)).Observe(ms)
}
