package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsExpiredTotal,
		reconcileRunsTotal,
	)
}

var (
	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions flipped to EXPIRED by reconciliation.",
		},
	)

	reconcileRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_reconcile_runs_total",
			Help: "Reconciliation runs by outcome.",
		},
		[]string{"outcome"}, // 'ok', 'error'
	)
)

func IncSubscriptionsExpired(count int) {
	subscriptionsExpiredTotal.Add(float64(count))
}

func IncReconcileRuns(outcome string) {
	reconcileRunsTotal.WithLabelValues(outcome).Inc()
}
