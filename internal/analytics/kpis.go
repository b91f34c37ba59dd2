package analytics

import "github.com/shopspring/decimal"

const utilizationPlaces = 4

// ComputeKPIs derives the six KPIs from raw counts
func ComputeKPIs(in KPIInputs) KPIs {
	return KPIs{
		PaymentsSuccessRate:         safeRate(in.PaymentsSucceeded, in.PaymentsTotal),
		RefundsPerPaymentRate:       safeRate(in.RefundsTotal, in.PaymentsTotal),
		WhatsAppErrorRate:           safeRate(in.StatusEventsError, in.StatusEventsTotal),
		BookingApprovalRate:         safeRate(in.BookingsApproved, in.BookingsTotal),
		VisitsAvgPerMember:          safeRate(in.VisitsTotal, in.VisitsUniqueMembers),
		EventCapacityUtilizationAvg: UtilizationAverage(in.Utilization),
	}
}

// UtilizationAverage is the mean of min(1, approved/capacity) over events with
// positive capacity, rounded half away from zero to four places
func UtilizationAverage(rows []EventUtilization) *float64 {
	sum := decimal.Zero
	n := int64(0)
	for _, row := range rows {
		if row.Capacity <= 0 {
			continue
		}
		ratio := decimal.NewFromInt(row.Approved).Div(decimal.NewFromInt(row.Capacity))
		sum = sum.Add(decimal.Min(decimal.NewFromInt(1), ratio))
		n++
	}
	if n == 0 {
		return nil
	}
	avg, _ := sum.Div(decimal.NewFromInt(n)).Round(utilizationPlaces).Float64()
	return &avg
}

func safeRate(numerator, denominator int64) *float64 {
	if denominator <= 0 {
		return nil
	}
	rate := float64(numerator) / float64(denominator)
	return &rate
}

// Flatten keys every KPI by its registry name
func (k *KPIs) Flatten() map[string]*float64 {
	return map[string]*float64{
		"kpi.payments_success_rate":          k.PaymentsSuccessRate,
		"kpi.refunds_per_payment_rate":       k.RefundsPerPaymentRate,
		"kpi.whatsapp_error_rate":            k.WhatsAppErrorRate,
		"kpi.booking_approval_rate":          k.BookingApprovalRate,
		"kpi.visits_avg_per_member":          k.VisitsAvgPerMember,
		"kpi.event_capacity_utilization_avg": k.EventCapacityUtilizationAvg,
	}
}
