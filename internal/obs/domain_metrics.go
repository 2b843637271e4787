package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CouponValidationTotal counts coupon validation outcomes by reason.
	CouponValidationTotal *prometheus.CounterVec
	// StackingEvaluationsTotal counts discount-stacking evaluations.
	StackingEvaluationsTotal prometheus.Counter
	// OrdersCreatedTotal counts successfully placed orders.
	OrdersCreatedTotal prometheus.Counter
	// OrdersRejectedTotal counts order submissions refused by the recompute.
	OrdersRejectedTotal *prometheus.CounterVec
	// CouponRedemptionsTotal counts coupon codes applied to placed orders.
	CouponRedemptionsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CouponValidationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_validation_total",
			Help:      "Count of coupon validation outcomes by reason.",
		}, []string{"reason"})
		StackingEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_stacking_evaluations_total",
			Help:      "Number of discount stacking policy evaluations.",
		})
		OrdersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Number of orders successfully placed.",
		})
		OrdersRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Count of order submissions rejected by the authoritative recompute.",
		}, []string{"reason"})
		CouponRedemptionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_redemptions_total",
			Help:      "Number of coupon codes applied to successfully placed orders.",
		})
		reg.MustRegister(
			CouponValidationTotal,
			StackingEvaluationsTotal,
			OrdersCreatedTotal,
			OrdersRejectedTotal,
			CouponRedemptionsTotal,
		)
	})
}
