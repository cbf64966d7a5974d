package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbErrorsTotal) }

var dbErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Database errors by repository and operation.",
	},
	[]string{"repo", "op"},
)

func IncDBError(repo, op string) {
	dbErrorsTotal.WithLabelValues(norm(repo), norm(op)).Inc()
}
