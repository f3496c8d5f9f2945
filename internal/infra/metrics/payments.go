package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsVerifiedTotal,
		upgradeCascadeCancelledTotal,
	)
}

var (
	paymentsVerifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_verified_total",
			Help: "Completed payments recorded, by plan type.",
		},
		[]string{"plan"},
	)

	upgradeCascadeCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upgrade_cascade_cancelled_total",
			Help: "SOLO subscriptions cancelled by PRO upgrades.",
		},
	)
)

func IncPaymentsVerified(plan string) {
	paymentsVerifiedTotal.WithLabelValues(plan).Inc()
}

func IncUpgradeCascadeCancelled(count int) {
	upgradeCascadeCancelledTotal.Add(float64(count))
}
