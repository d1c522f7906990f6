package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CouponMetrics holds the redemption lifecycle metrics.
type CouponMetrics struct {
	// Claims by outcome: ok, exhausted, already_claimed, unavailable, not_found, error
	ClaimsTotal   prometheus.CounterVec
	ClaimDuration prometheus.HistogramVec

	// Gate decisions taken in Redis before Postgres is touched
	GateRejectionsTotal prometheus.CounterVec

	// Merchant validation calls by action and outcome
	ValidationsTotal   prometheus.CounterVec
	ValidationDuration prometheus.HistogramVec

	// Value of confirmed discounts, split by discount type
	RedeemedValueTotal prometheus.CounterVec

	// Unused, unexpired instances across the platform
	ActiveInstances prometheus.Gauge

	EventPublishErrorsTotal prometheus.CounterVec
	WebhookDeliveriesTotal  prometheus.CounterVec
}

// NewCouponMetrics registers the metrics on reg. Passing nil uses the
// default registry.
func NewCouponMetrics(reg prometheus.Registerer) *CouponMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &CouponMetrics{
		ClaimsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_claims_total",
				Help: "Coupon claim attempts by outcome",
			},
			[]string{"store_id", "result"},
		),

		ClaimDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coupon_claim_duration_seconds",
				Help:    "Time spent in the claim transaction",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms, 10ms, 20ms...
			},
			[]string{"result"},
		),

		GateRejectionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_gate_rejections_total",
				Help: "Claims rejected by the Redis gate",
			},
			[]string{"reason"},
		),

		ValidationsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_validations_total",
				Help: "Merchant resolve/confirm calls by outcome",
			},
			[]string{"store_id", "action", "result"},
		),

		ValidationDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coupon_validation_duration_seconds",
				Help:    "Resolve/confirm latency",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"action"},
		),

		RedeemedValueTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_redeemed_value_total",
				Help: "Sum of confirmed coupon values",
			},
			[]string{"store_id", "discount_type"},
		),

		ActiveInstances: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coupon_active_instances",
				Help: "Claimed coupons that are neither used nor expired",
			},
		),

		EventPublishErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_event_publish_errors_total",
				Help: "Coupon events that could not be published",
			},
			[]string{"type"},
		),

		WebhookDeliveriesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_webhook_deliveries_total",
				Help: "Store webhook deliveries by outcome",
			},
			[]string{"result"},
		),
	}
}

func storeLabel(storeID int64) string {
	return strconv.FormatInt(storeID, 10)
}

func (m *CouponMetrics) RecordClaim(storeID int64, result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ClaimsTotal.WithLabelValues(storeLabel(storeID), result).Inc()
	m.ClaimDuration.WithLabelValues(result).Observe(durationSeconds)
}

func (m *CouponMetrics) RecordGateRejection(reason string) {
	if m == nil {
		return
	}
	m.GateRejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *CouponMetrics) RecordValidation(storeID int64, action, result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ValidationsTotal.WithLabelValues(storeLabel(storeID), action, result).Inc()
	m.ValidationDuration.WithLabelValues(action).Observe(durationSeconds)
}

func (m *CouponMetrics) RecordRedeemed(storeID int64, discountType string, value float64) {
	if m == nil {
		return
	}
	m.RedeemedValueTotal.WithLabelValues(storeLabel(storeID), discountType).Add(value)
}

func (m *CouponMetrics) SetActiveInstances(n int64) {
	if m == nil {
		return
	}
	m.ActiveInstances.Set(float64(n))
}

func (m *CouponMetrics) RecordPublishError(eventType string) {
	if m == nil {
		return
	}
	m.EventPublishErrorsTotal.WithLabelValues(eventType).Inc()
}

func (m *CouponMetrics) RecordWebhook(result string) {
	if m == nil {
		return
	}
	m.WebhookDeliveriesTotal.WithLabelValues(result).Inc()
}
