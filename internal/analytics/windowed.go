package analytics

// Windowed metric names as registered
const (
	MetricWindowedRevenueCents         = "windowed.revenue_cents"
	MetricWindowedRefundRate           = "windowed.refund_rate"
	MetricWindowedWhatsAppDeliveryRate = "windowed.whatsapp_delivery_rate"
)

// WindowedMetricNames lists every windowed metric the calculator produces
func WindowedMetricNames() []string {
	return []string{
		MetricWindowedRevenueCents,
		MetricWindowedRefundRate,
		MetricWindowedWhatsAppDeliveryRate,
	}
}

// revenue may be negative: refunds need not share a window with their payment
func revenue(paymentsCents, refundsCents int64) int64 {
	return paymentsCents - refundsCents
}

func refundRate(paymentsCents, refundsCents int64) *float64 {
	return safeRate(refundsCents, paymentsCents)
}

// deliveryRate divides distinct delivered-or-read message ids by messages sent.
// The numerator is not restricted to messages created in the same window.
func deliveryRate(deliveredMessages, sentMessages int64) *float64 {
	return safeRate(deliveredMessages, sentMessages)
}
