package analytics

import "time"

// Facts is the all-time snapshot of independent counts and sums per entity group
type Facts struct {
	Members    MemberFacts   `json:"members"`
	Events     EventFacts    `json:"events"`
	Bookings   BookingFacts  `json:"bookings"`
	ClassTypes TotalFact     `json:"class_types"`
	Groups     TotalFact     `json:"groups"`
	Campaigns  TotalFact     `json:"campaigns"`
	Payments   PaymentFacts  `json:"payments"`
	Refunds    RefundFacts   `json:"refunds"`
	WhatsApp   WhatsAppFacts `json:"whatsapp"`
	Visits     VisitFacts    `json:"visits"`
}

type MemberFacts struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type EventFacts struct {
	Total             int64 `json:"total"`
	WithCapacityCount int64 `json:"with_capacity_count"`
	CapacitySum       int64 `json:"capacity_sum"`
}

type BookingFacts struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"by_status"`
	UniqueMembers int64            `json:"unique_members"`
	UniqueEvents  int64            `json:"unique_events"`
}

type TotalFact struct {
	Total int64 `json:"total"`
}

type PaymentFacts struct {
	Count            int64   `json:"count"`
	GrossAmountCents int64   `json:"gross_amount_cents"`
	AvgAmountCents   float64 `json:"avg_amount_cents"`
}

type RefundFacts struct {
	Count            int64 `json:"count"`
	GrossAmountCents int64 `json:"gross_amount_cents"`
}

type WhatsAppFacts struct {
	MessagesTotal            int64 `json:"messages_total"`
	StatusEventsTotal        int64 `json:"status_events_total"`
	Delivered                int64 `json:"delivered"`
	Read                     int64 `json:"read"`
	Error                    int64 `json:"error"`
	DistinctStatusedMessages int64 `json:"distinct_statused_messages"`
}

type VisitFacts struct {
	Total         int64 `json:"total"`
	UniqueMembers int64 `json:"unique_members"`
}

// KPIs are all-time ratios. A nil value means the denominator was zero.
type KPIs struct {
	PaymentsSuccessRate         *float64 `json:"payments_success_rate"`
	RefundsPerPaymentRate       *float64 `json:"refunds_per_payment_rate"`
	WhatsAppErrorRate           *float64 `json:"whatsapp_error_rate"`
	BookingApprovalRate         *float64 `json:"booking_approval_rate"`
	VisitsAvgPerMember          *float64 `json:"visits_avg_per_member"`
	EventCapacityUtilizationAvg *float64 `json:"event_capacity_utilization_avg"`
}

// KPIInputs are the raw counts the KPI calculator divides
type KPIInputs struct {
	PaymentsTotal       int64
	PaymentsSucceeded   int64
	RefundsTotal        int64
	StatusEventsTotal   int64
	StatusEventsError   int64
	BookingsTotal       int64
	BookingsApproved    int64
	VisitsTotal         int64
	VisitsUniqueMembers int64
	Utilization         []EventUtilization
}

// EventUtilization is one event with a positive capacity and its approved booking count
type EventUtilization struct {
	EventID  string `gorm:"column:event_id"`
	Capacity int64  `gorm:"column:capacity"`
	Approved int64  `gorm:"column:approved"`
}

// WindowedMetrics are computed over an inclusive [start, end] range
type WindowedMetrics struct {
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	RevenueCents         int64     `json:"revenue_cents"`
	RefundRate           *float64  `json:"refund_rate"`
	WhatsAppDeliveryRate *float64  `json:"whatsapp_delivery_rate"`
}

// Totals are plain entity counts for fast dashboards
type Totals struct {
	Payments                int64 `json:"payments"`
	Refunds                 int64 `json:"refunds"`
	WhatsAppDelivered       int64 `json:"whatsapp_delivered" gorm:"column:whatsapp_delivered"`
	WhatsAppRead            int64 `json:"whatsapp_read" gorm:"column:whatsapp_read"`
	WhatsAppDeliveredOrRead int64 `json:"whatsapp_delivered_or_read" gorm:"column:whatsapp_delivered_or_read"`
	MemberVisits            int64 `json:"member_visits"`
}

// Summary is the dashboard payload
type Summary struct {
	GeneratedAt              time.Time        `json:"generated_at"`
	AttendanceByClassType30d map[string]int64 `json:"attendance_by_class_type_30d"`
	AttendanceByClassType90d map[string]int64 `json:"attendance_by_class_type_90d"`
	AverageUtilizationRate   *float64         `json:"average_utilization_rate"`
	ActiveMembers            int64            `json:"active_members"`
	DemographicAgeBands      map[string]int64 `json:"demographic_age_bands"`
	GenderBreakdown          map[string]int64 `json:"gender_breakdown"`
	RevenueCents30d          int64            `json:"revenue_cents_30d"`
	RefundRate30d            *float64         `json:"refund_rate_30d"`
	WhatsAppDeliveryRate30d  *float64         `json:"whatsapp_delivery_rate_30d"`
	Totals                   Totals           `json:"totals"`
	Facts                    Facts            `json:"facts"`
	KPIs                     KPIs             `json:"kpis"`
}

// MemberProfile is the slice of a member the demographic breakdown reads
type MemberProfile struct {
	DOB    *time.Time `gorm:"column:dob"`
	Gender *string    `gorm:"column:gender"`
}
