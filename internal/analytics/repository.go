package analytics

import (
	"context"
	"fmt"
	"time"

	"boxstudio/internal/bookings"
	"boxstudio/internal/members"
	"boxstudio/internal/payments"
	"boxstudio/internal/whatsapp"

	"gorm.io/gorm"
)

// Repository reads aggregates straight from the store. Every method is read-only.
type Repository interface {
	FactsSnapshot(ctx context.Context) (*Facts, error)
	KPIInputs(ctx context.Context) (*KPIInputs, error)

	SumPayments(ctx context.Context, start, end time.Time) (int64, error)
	SumRefunds(ctx context.Context, start, end time.Time) (int64, error)
	CountMessagesCreated(ctx context.Context, start, end time.Time) (int64, error)
	CountDeliveredMessages(ctx context.Context, start, end time.Time) (int64, error)

	AttendanceByClassType(ctx context.Context, since time.Time) (map[string]int64, error)
	ActiveMembers(ctx context.Context) (int64, error)
	MemberProfiles(ctx context.Context) ([]MemberProfile, error)
	Totals(ctx context.Context) (*Totals, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

var (
	statusApproved  = string(bookings.StatusApproved)
	statusSucceeded = payments.StatusSucceeded
	statusDelivered = string(whatsapp.StatusDelivered)
	statusRead      = string(whatsapp.StatusRead)
	statusError     = string(whatsapp.StatusError)
)

type factScalars struct {
	MembersTotal             int64
	EventsTotal              int64
	EventsWithCapacity       int64
	EventsCapacitySum        int64
	BookingsTotal            int64
	BookingsUniqueMembers    int64
	BookingsUniqueEvents     int64
	ClassTypesTotal          int64
	GroupsTotal              int64
	CampaignsTotal           int64
	PaymentsCount            int64
	PaymentsGross            int64
	PaymentsAvg              float64
	RefundsCount             int64
	RefundsGross             int64
	MessagesTotal            int64
	StatusEventsTotal        int64
	StatusDelivered          int64
	StatusRead               int64
	StatusError              int64
	DistinctStatusedMessages int64
	VisitsTotal              int64
	VisitsUniqueMembers      int64
}

const factScalarsSQL = `
SELECT
	(SELECT COUNT(*) FROM members) AS members_total,
	(SELECT COUNT(*) FROM events) AS events_total,
	(SELECT COUNT(*) FROM events WHERE capacity IS NOT NULL) AS events_with_capacity,
	(SELECT COALESCE(SUM(capacity), 0)::bigint FROM events WHERE capacity IS NOT NULL) AS events_capacity_sum,
	(SELECT COUNT(*) FROM bookings) AS bookings_total,
	(SELECT COUNT(DISTINCT member_id) FROM bookings) AS bookings_unique_members,
	(SELECT COUNT(DISTINCT event_id) FROM bookings) AS bookings_unique_events,
	(SELECT COUNT(*) FROM class_types) AS class_types_total,
	(SELECT COUNT(*) FROM groups) AS groups_total,
	(SELECT COUNT(*) FROM campaigns) AS campaigns_total,
	(SELECT COUNT(*) FROM payments) AS payments_count,
	(SELECT COALESCE(SUM(amount_cents), 0)::bigint FROM payments) AS payments_gross,
	(SELECT COALESCE(AVG(amount_cents), 0)::float8 FROM payments) AS payments_avg,
	(SELECT COUNT(*) FROM refunds) AS refunds_count,
	(SELECT COALESCE(SUM(amount_cents), 0)::bigint FROM refunds) AS refunds_gross,
	(SELECT COUNT(*) FROM whatsapp_messages) AS messages_total,
	(SELECT COUNT(*) FROM whatsapp_status_events) AS status_events_total,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status = @delivered) AS status_delivered,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status = @read) AS status_read,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status = @error) AS status_error,
	(SELECT COUNT(DISTINCT message_id) FROM whatsapp_status_events) AS distinct_statused_messages,
	(SELECT COUNT(*) FROM member_visits) AS visits_total,
	(SELECT COUNT(DISTINCT member_id) FROM member_visits) AS visits_unique_members`

type statusRow struct {
	Status *string
	Count  int64
}

func (r *repository) FactsSnapshot(ctx context.Context) (*Facts, error) {
	db := r.db.WithContext(ctx)

	var s factScalars
	err := db.Raw(factScalarsSQL, map[string]interface{}{
		"delivered": statusDelivered,
		"read":      statusRead,
		"error":     statusError,
	}).Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get fact counts: %w", err)
	}

	f := emptyFacts()
	f.Members.Total = s.MembersTotal
	f.Events = EventFacts{Total: s.EventsTotal, WithCapacityCount: s.EventsWithCapacity, CapacitySum: s.EventsCapacitySum}
	f.Bookings.Total = s.BookingsTotal
	f.Bookings.UniqueMembers = s.BookingsUniqueMembers
	f.Bookings.UniqueEvents = s.BookingsUniqueEvents
	f.ClassTypes.Total = s.ClassTypesTotal
	f.Groups.Total = s.GroupsTotal
	f.Campaigns.Total = s.CampaignsTotal
	f.Payments = PaymentFacts{Count: s.PaymentsCount, GrossAmountCents: s.PaymentsGross, AvgAmountCents: s.PaymentsAvg}
	f.Refunds = RefundFacts{Count: s.RefundsCount, GrossAmountCents: s.RefundsGross}
	f.WhatsApp = WhatsAppFacts{
		MessagesTotal:            s.MessagesTotal,
		StatusEventsTotal:        s.StatusEventsTotal,
		Delivered:                s.StatusDelivered,
		Read:                     s.StatusRead,
		Error:                    s.StatusError,
		DistinctStatusedMessages: s.DistinctStatusedMessages,
	}
	f.Visits = VisitFacts{Total: s.VisitsTotal, UniqueMembers: s.VisitsUniqueMembers}

	if err := r.countByStatus(db, "members", f.Members.ByStatus); err != nil {
		return nil, fmt.Errorf("failed to group members by status: %w", err)
	}
	if err := r.countByStatus(db, "bookings", f.Bookings.ByStatus); err != nil {
		return nil, fmt.Errorf("failed to group bookings by status: %w", err)
	}
	return f, nil
}

func (r *repository) countByStatus(db *gorm.DB, table string, into map[string]int64) error {
	var rows []statusRow
	err := db.Table(table).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		into[statusKey(row.Status)] += row.Count
	}
	return nil
}

type kpiScalars struct {
	PaymentsTotal       int64
	PaymentsSucceeded   int64
	RefundsTotal        int64
	StatusEventsTotal   int64
	StatusEventsError   int64
	BookingsTotal       int64
	BookingsApproved    int64
	VisitsTotal         int64
	VisitsUniqueMembers int64
}

const kpiScalarsSQL = `
SELECT
	(SELECT COUNT(*) FROM payments) AS payments_total,
	(SELECT COUNT(*) FROM payments WHERE status = @succeeded) AS payments_succeeded,
	(SELECT COUNT(*) FROM refunds) AS refunds_total,
	(SELECT COUNT(*) FROM whatsapp_status_events) AS status_events_total,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status = @error) AS status_events_error,
	(SELECT COUNT(*) FROM bookings) AS bookings_total,
	(SELECT COUNT(*) FROM bookings WHERE status = @approved) AS bookings_approved,
	(SELECT COUNT(*) FROM member_visits) AS visits_total,
	(SELECT COUNT(DISTINCT member_id) FROM member_visits) AS visits_unique_members`

// utilizationSQL joins every event with a positive capacity to its approved
// booking count in one pass
const utilizationSQL = `
SELECT e.id::text AS event_id, e.capacity AS capacity, COALESCE(b.approved, 0) AS approved
FROM events e
LEFT JOIN (
	SELECT event_id, COUNT(*) AS approved
	FROM bookings
	WHERE status = ?
	GROUP BY event_id
) b ON b.event_id = e.id
WHERE e.capacity IS NOT NULL AND e.capacity > 0`

func (r *repository) KPIInputs(ctx context.Context) (*KPIInputs, error) {
	db := r.db.WithContext(ctx)

	var s kpiScalars
	err := db.Raw(kpiScalarsSQL, map[string]interface{}{
		"succeeded": statusSucceeded,
		"error":     statusError,
		"approved":  statusApproved,
	}).Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get kpi counts: %w", err)
	}

	var utilization []EventUtilization
	if err := db.Raw(utilizationSQL, statusApproved).Scan(&utilization).Error; err != nil {
		return nil, fmt.Errorf("failed to get event utilization: %w", err)
	}

	return &KPIInputs{
		PaymentsTotal:       s.PaymentsTotal,
		PaymentsSucceeded:   s.PaymentsSucceeded,
		RefundsTotal:        s.RefundsTotal,
		StatusEventsTotal:   s.StatusEventsTotal,
		StatusEventsError:   s.StatusEventsError,
		BookingsTotal:       s.BookingsTotal,
		BookingsApproved:    s.BookingsApproved,
		VisitsTotal:         s.VisitsTotal,
		VisitsUniqueMembers: s.VisitsUniqueMembers,
		Utilization:         utilization,
	}, nil
}

// Window bounds are inclusive on both ends

func (r *repository) SumPayments(ctx context.Context, start, end time.Time) (int64, error) {
	return r.sumAmount(ctx, "payments", start, end)
}

func (r *repository) SumRefunds(ctx context.Context, start, end time.Time) (int64, error) {
	return r.sumAmount(ctx, "refunds", start, end)
}

func (r *repository) sumAmount(ctx context.Context, table string, start, end time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Table(table).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Select("COALESCE(SUM(amount_cents), 0)::bigint").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", table, err)
	}
	return sum, nil
}

func (r *repository) CountMessagesCreated(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("whatsapp_messages").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count whatsapp messages: %w", err)
	}
	return count, nil
}

func (r *repository) CountDeliveredMessages(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("whatsapp_status_events").
		Where("status IN ? AND created_at >= ? AND created_at <= ?", []string{statusDelivered, statusRead}, start, end).
		Select("COUNT(DISTINCT message_id)").
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count delivered messages: %w", err)
	}
	return count, nil
}

func (r *repository) AttendanceByClassType(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		ClassTypeID string
		Count       int64
	}
	err := r.db.WithContext(ctx).Table("bookings b").
		Select("e.class_type_id AS class_type_id, COUNT(*) AS count").
		Joins("JOIN events e ON e.id = b.event_id").
		Where("b.status = ? AND b.created_at >= ?", statusApproved, since).
		Group("e.class_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by class type: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ClassTypeID] = row.Count
	}
	return out, nil
}

func (r *repository) ActiveMembers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("members").
		Where("status = ?", members.StatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active members: %w", err)
	}
	return count, nil
}

func (r *repository) MemberProfiles(ctx context.Context) ([]MemberProfile, error) {
	var profiles []MemberProfile
	if err := r.db.WithContext(ctx).Table("members").Select("dob, gender").Scan(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to get member profiles: %w", err)
	}
	return profiles, nil
}

const totalsSQL = `
SELECT
	(SELECT COUNT(*) FROM payments) AS payments,
	(SELECT COUNT(*) FROM refunds) AS refunds,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status = @delivered) AS whatsapp_delivered,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status = @read) AS whatsapp_read,
	(SELECT COUNT(*) FROM whatsapp_status_events WHERE status IN (@delivered, @read)) AS whatsapp_delivered_or_read,
	(SELECT COUNT(*) FROM member_visits) AS member_visits`

func (r *repository) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.db.WithContext(ctx).Raw(totalsSQL, map[string]interface{}{
		"delivered": statusDelivered,
		"read":      statusRead,
	}).Scan(&t).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}
	return &t, nil
}
