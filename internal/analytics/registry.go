package analytics

import "sort"

type Category string

const (
	CategoryFact     Category = "fact"
	CategoryKPI      Category = "kpi"
	CategoryWindowed Category = "windowed"
)

// Metric documents one computed value. Nothing here is evaluated at runtime.
type Metric struct {
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Inputs       []string `json:"inputs"`
	Dependencies []string `json:"dependencies"`
	SQLSketch    string   `json:"sql_sketch"`
	Constraints  []string `json:"constraints"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
}

const (
	nonNegInt   = "non-negative integer"
	nullIfZero  = "NULL if denominator is zero"
	unitRange   = "0..1 range when not NULL"
	nullSafeSum = "NULL-safe sum"
	inclusive   = "window inclusive of bounds"
)

func count(name, table, description string, tags ...string) Metric {
	return Metric{
		Name:        name,
		Category:    CategoryFact,
		Inputs:      []string{table},
		SQLSketch:   "SELECT COUNT(*) FROM " + table + ";",
		Constraints: []string{nonNegInt},
		Description: description,
		Tags:        append(tags, "facts"),
	}
}

var registry = []Metric{
	count("members.total", "members", "Total number of members.", "members"),
	{
		Name:        "members.by_status",
		Category:    CategoryFact,
		Inputs:      []string{"members.status"},
		SQLSketch:   "SELECT status, COUNT(*) FROM members GROUP BY status;",
		Constraints: []string{"NULL status bucketed as empty string", "values sum to members.total"},
		Description: "Member count per status.",
		Tags:        []string{"members", "facts", "group-by"},
	},
	count("events.total", "events", "Total number of scheduled events.", "events"),
	{
		Name:        "events.with_capacity_count",
		Category:    CategoryFact,
		Inputs:      []string{"events.capacity"},
		SQLSketch:   "SELECT COUNT(*) FROM events WHERE capacity IS NOT NULL;",
		Constraints: []string{nonNegInt},
		Description: "Events with a capacity limit.",
		Tags:        []string{"events", "facts", "capacity"},
	},
	{
		Name:        "events.capacity_sum",
		Category:    CategoryFact,
		Inputs:      []string{"events.capacity"},
		SQLSketch:   "SELECT COALESCE(SUM(capacity),0) FROM events WHERE capacity IS NOT NULL;",
		Constraints: []string{nonNegInt, nullSafeSum},
		Description: "Sum of capacities across limited events.",
		Tags:        []string{"events", "facts", "capacity"},
	},
	count("bookings.total", "bookings", "Total number of bookings.", "bookings"),
	{
		Name:        "bookings.by_status",
		Category:    CategoryFact,
		Inputs:      []string{"bookings.status"},
		SQLSketch:   "SELECT status, COUNT(*) FROM bookings GROUP BY status;",
		Constraints: []string{"values sum to bookings.total"},
		Description: "Booking count per status.",
		Tags:        []string{"bookings", "facts", "group-by"},
	},
	{
		Name:        "bookings.unique_members",
		Category:    CategoryFact,
		Inputs:      []string{"bookings.member_id"},
		SQLSketch:   "SELECT COUNT(DISTINCT member_id) FROM bookings;",
		Constraints: []string{nonNegInt},
		Description: "Members with at least one booking.",
		Tags:        []string{"bookings", "facts", "members"},
	},
	{
		Name:        "bookings.unique_events",
		Category:    CategoryFact,
		Inputs:      []string{"bookings.event_id"},
		SQLSketch:   "SELECT COUNT(DISTINCT event_id) FROM bookings;",
		Constraints: []string{nonNegInt},
		Description: "Events with at least one booking.",
		Tags:        []string{"bookings", "facts", "events"},
	},
	count("class_types.total", "class_types", "Total number of class types.", "class_types"),
	count("groups.total", "groups", "Total number of member groups.", "groups"),
	count("campaigns.total", "campaigns", "Total number of acquisition campaigns.", "campaigns"),
	count("payments.count", "payments", "Total number of payment records.", "payments"),
	{
		Name:        "payments.gross_amount_cents",
		Category:    CategoryFact,
		Inputs:      []string{"payments.amount_cents"},
		SQLSketch:   "SELECT COALESCE(SUM(amount_cents),0) FROM payments;",
		Constraints: []string{nonNegInt, nullSafeSum},
		Description: "Sum of all payment amounts in cents.",
		Tags:        []string{"payments", "facts", "revenue"},
	},
	{
		Name:        "payments.avg_amount_cents",
		Category:    CategoryFact,
		Inputs:      []string{"payments.amount_cents"},
		SQLSketch:   "SELECT COALESCE(AVG(amount_cents),0.0) FROM payments;",
		Constraints: []string{"float", "0.0 when there are no payments"},
		Description: "Average payment amount in cents.",
		Tags:        []string{"payments", "facts"},
	},
	count("refunds.count", "refunds", "Total number of refund records.", "refunds"),
	{
		Name:        "refunds.gross_amount_cents",
		Category:    CategoryFact,
		Inputs:      []string{"refunds.amount_cents"},
		SQLSketch:   "SELECT COALESCE(SUM(amount_cents),0) FROM refunds;",
		Constraints: []string{nonNegInt, nullSafeSum},
		Description: "Sum of refund amounts in cents.",
		Tags:        []string{"refunds", "facts"},
	},
	count("whatsapp.messages_total", "whatsapp_messages", "Outbound WhatsApp messages.", "whatsapp"),
	count("whatsapp.status_events_total", "whatsapp_status_events", "Recorded WhatsApp status callbacks.", "whatsapp"),
	statusCount("whatsapp.delivered", "delivered"),
	statusCount("whatsapp.read", "read"),
	statusCount("whatsapp.error", "error"),
	{
		Name:        "whatsapp.distinct_statused_messages",
		Category:    CategoryFact,
		Inputs:      []string{"whatsapp_status_events.message_id"},
		SQLSketch:   "SELECT COUNT(DISTINCT message_id) FROM whatsapp_status_events;",
		Constraints: []string{nonNegInt},
		Description: "Messages with at least one status event.",
		Tags:        []string{"whatsapp", "facts"},
	},
	count("visits.total", "member_visits", "Recorded member visits.", "visits"),
	{
		Name:        "visits.unique_members",
		Category:    CategoryFact,
		Inputs:      []string{"member_visits.member_id"},
		SQLSketch:   "SELECT COUNT(DISTINCT member_id) FROM member_visits;",
		Constraints: []string{nonNegInt},
		Description: "Members with at least one visit.",
		Tags:        []string{"visits", "facts", "members"},
	},

	{
		Name:         "kpi.payments_success_rate",
		Category:     CategoryKPI,
		Inputs:       []string{"payments.status"},
		Dependencies: []string{"payments.count"},
		SQLSketch: "SELECT CASE WHEN COUNT(*)<=0 THEN NULL ELSE " +
			"CAST(SUM(CASE WHEN status='succeeded' THEN 1 ELSE 0 END) AS FLOAT)/COUNT(*) END FROM payments;",
		Constraints: []string{nullIfZero, unitRange},
		Description: "Share of payments that succeeded.",
		Tags:        []string{"payments", "kpi"},
	},
	{
		Name:         "kpi.refunds_per_payment_rate",
		Category:     CategoryKPI,
		Inputs:       []string{"refunds", "payments"},
		Dependencies: []string{"refunds.count", "payments.count"},
		SQLSketch:    "SELECT CAST((SELECT COUNT(*) FROM refunds) AS FLOAT)/NULLIF((SELECT COUNT(*) FROM payments),0);",
		Constraints:  []string{nullIfZero, "unbounded above; a payment may carry several refunds"},
		Description:  "Refund records per payment record.",
		Tags:         []string{"refunds", "payments", "kpi"},
	},
	{
		Name:         "kpi.whatsapp_error_rate",
		Category:     CategoryKPI,
		Inputs:       []string{"whatsapp_status_events.status"},
		Dependencies: []string{"whatsapp.error", "whatsapp.status_events_total"},
		SQLSketch: "SELECT CASE WHEN COUNT(*)<=0 THEN NULL ELSE " +
			"CAST(SUM(CASE WHEN status='error' THEN 1 ELSE 0 END) AS FLOAT)/COUNT(*) END FROM whatsapp_status_events;",
		Constraints: []string{nullIfZero, unitRange},
		Description: "Share of WhatsApp status events that are errors.",
		Tags:        []string{"whatsapp", "kpi"},
	},
	{
		Name:         "kpi.booking_approval_rate",
		Category:     CategoryKPI,
		Inputs:       []string{"bookings.status"},
		Dependencies: []string{"bookings.total", "bookings.by_status"},
		SQLSketch: "SELECT CASE WHEN COUNT(*)<=0 THEN NULL ELSE " +
			"CAST(SUM(CASE WHEN status='approved' THEN 1 ELSE 0 END) AS FLOAT)/COUNT(*) END FROM bookings;",
		Constraints: []string{nullIfZero, unitRange},
		Description: "Share of bookings currently approved.",
		Tags:        []string{"bookings", "kpi"},
	},
	{
		Name:         "kpi.visits_avg_per_member",
		Category:     CategoryKPI,
		Inputs:       []string{"member_visits.member_id"},
		Dependencies: []string{"visits.total", "visits.unique_members"},
		SQLSketch:    "SELECT CAST(COUNT(*) AS FLOAT)/NULLIF(COUNT(DISTINCT member_id),0) FROM member_visits;",
		Constraints:  []string{nullIfZero, ">= 1 when not NULL"},
		Description:  "Average visits per visiting member.",
		Tags:         []string{"visits", "kpi"},
	},
	{
		Name:         "kpi.event_capacity_utilization_avg",
		Category:     CategoryKPI,
		Inputs:       []string{"events.capacity", "bookings.status", "bookings.event_id"},
		Dependencies: []string{"events.with_capacity_count"},
		SQLSketch: "SELECT ROUND(AVG(LEAST(1.0, COALESCE(b.approved,0)::float/e.capacity))::numeric, 4) " +
			"FROM events e LEFT JOIN (SELECT event_id, COUNT(*) AS approved FROM bookings WHERE status='approved' GROUP BY event_id) b " +
			"ON b.event_id = e.id WHERE e.capacity > 0;",
		Constraints: []string{"NULL if no event has capacity > 0", unitRange, "per-event ratio clamped to 1.0", "rounded to 4 decimals"},
		Description: "Mean capacity utilization across events with a positive capacity.",
		Tags:        []string{"events", "bookings", "kpi", "utilization"},
	},

	{
		Name:     MetricWindowedRevenueCents,
		Category: CategoryWindowed,
		Inputs:   []string{"payments.amount_cents", "payments.created_at", "refunds.amount_cents", "refunds.created_at"},
		SQLSketch: "SELECT COALESCE((SELECT SUM(amount_cents) FROM payments WHERE created_at BETWEEN :start AND :end),0) - " +
			"COALESCE((SELECT SUM(amount_cents) FROM refunds WHERE created_at BETWEEN :start AND :end),0);",
		Constraints: []string{"integer", "may be negative", inclusive},
		Description: "Revenue in cents over a time window.",
		Tags:        []string{"payments", "refunds", "windowed", "revenue"},
	},
	{
		Name:         MetricWindowedRefundRate,
		Category:     CategoryWindowed,
		Inputs:       []string{"payments.amount_cents", "payments.created_at", "refunds.amount_cents", "refunds.created_at"},
		Dependencies: []string{MetricWindowedRevenueCents},
		SQLSketch:    "SELECT ref_sum::float / NULLIF(pay_sum,0) FROM (window sums of refunds and payments);",
		Constraints:  []string{"NULL if payment sum <= 0", inclusive},
		Description:  "Refunded cents over paid cents within a window.",
		Tags:         []string{"payments", "refunds", "windowed"},
	},
	{
		Name:     MetricWindowedWhatsAppDeliveryRate,
		Category: CategoryWindowed,
		Inputs:   []string{"whatsapp_messages.created_at", "whatsapp_status_events.message_id", "whatsapp_status_events.status", "whatsapp_status_events.created_at"},
		SQLSketch: "SELECT COUNT(DISTINCT e.message_id) FILTER (WHERE e.status IN ('delivered','read') AND e.created_at BETWEEN :start AND :end)::float / " +
			"NULLIF((SELECT COUNT(*) FROM whatsapp_messages WHERE created_at BETWEEN :start AND :end),0);",
		Constraints: []string{"NULL if no messages were created in the window", inclusive, "numerator messages need not be created in the window"},
		Description: "Delivered or read messages over messages sent within a window.",
		Tags:        []string{"whatsapp", "windowed", "delivery"},
	},
}

func statusCount(name, status string) Metric {
	return Metric{
		Name:        name,
		Category:    CategoryFact,
		Inputs:      []string{"whatsapp_status_events.status"},
		SQLSketch:   "SELECT COUNT(*) FROM whatsapp_status_events WHERE status='" + status + "';",
		Constraints: []string{nonNegInt},
		Description: "WhatsApp status events with status " + status + ".",
		Tags:        []string{"whatsapp", "facts", "delivery"},
	}
}

var registryIndex = func() map[string]int {
	idx := make(map[string]int, len(registry))
	for i, m := range registry {
		idx[m.Name] = i
	}
	return idx
}()

// All returns a copy of the registry sorted by category then name
func All() []Metric {
	out := make([]Metric, len(registry))
	for i, m := range registry {
		out[i] = m.clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Lookup finds a metric by exact name
func Lookup(name string) (Metric, bool) {
	i, ok := registryIndex[name]
	if !ok {
		return Metric{}, false
	}
	return registry[i].clone(), true
}

// clone deep-copies the slice fields so callers cannot edit the registry
func (m Metric) clone() Metric {
	m.Inputs = cloneStrings(m.Inputs)
	m.Dependencies = cloneStrings(m.Dependencies)
	m.Constraints = cloneStrings(m.Constraints)
	m.Tags = cloneStrings(m.Tags)
	return m
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
