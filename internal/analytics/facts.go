package analytics

// Flatten keys every fact by its registry name. Group-by facts keep their map value.
func (f *Facts) Flatten() map[string]interface{} {
	return map[string]interface{}{
		"members.total":                       f.Members.Total,
		"members.by_status":                   f.Members.ByStatus,
		"events.total":                        f.Events.Total,
		"events.with_capacity_count":          f.Events.WithCapacityCount,
		"events.capacity_sum":                 f.Events.CapacitySum,
		"bookings.total":                      f.Bookings.Total,
		"bookings.by_status":                  f.Bookings.ByStatus,
		"bookings.unique_members":             f.Bookings.UniqueMembers,
		"bookings.unique_events":              f.Bookings.UniqueEvents,
		"class_types.total":                   f.ClassTypes.Total,
		"groups.total":                        f.Groups.Total,
		"campaigns.total":                     f.Campaigns.Total,
		"payments.count":                      f.Payments.Count,
		"payments.gross_amount_cents":         f.Payments.GrossAmountCents,
		"payments.avg_amount_cents":           f.Payments.AvgAmountCents,
		"refunds.count":                       f.Refunds.Count,
		"refunds.gross_amount_cents":          f.Refunds.GrossAmountCents,
		"whatsapp.messages_total":             f.WhatsApp.MessagesTotal,
		"whatsapp.status_events_total":        f.WhatsApp.StatusEventsTotal,
		"whatsapp.delivered":                  f.WhatsApp.Delivered,
		"whatsapp.read":                       f.WhatsApp.Read,
		"whatsapp.error":                      f.WhatsApp.Error,
		"whatsapp.distinct_statused_messages": f.WhatsApp.DistinctStatusedMessages,
		"visits.total":                        f.Visits.Total,
		"visits.unique_members":               f.Visits.UniqueMembers,
	}
}

// emptyFacts returns a snapshot with non-nil group-by maps
func emptyFacts() *Facts {
	return &Facts{
		Members:  MemberFacts{ByStatus: map[string]int64{}},
		Bookings: BookingFacts{ByStatus: map[string]int64{}},
	}
}

// statusKey buckets a NULL status as the empty string
func statusKey(status *string) string {
	if status == nil {
		return ""
	}
	return *status
}
