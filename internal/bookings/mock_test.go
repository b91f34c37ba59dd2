package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"boxstudio/internal/events"
	"boxstudio/internal/notifications"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type visit struct {
	memberID uuid.UUID
	eventID  uuid.UUID
}

// mockRepository is an in-memory store. WithinTransaction holds a lock for the
// whole callback and restores a snapshot when the callback fails.
type mockRepository struct {
	txMu sync.Mutex

	events       map[uuid.UUID]*events.Event
	members      map[uuid.UUID][]string
	gatedGroups  map[string]bool
	bookings     map[uuid.UUID]*Booking
	attendance   map[uuid.UUID]int
	visits       []visit
	createdOrder []uuid.UUID

	recordAttendanceErr error
	lockedEvents        []uuid.UUID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		events:      make(map[uuid.UUID]*events.Event),
		members:     make(map[uuid.UUID][]string),
		gatedGroups: make(map[string]bool),
		bookings:    make(map[uuid.UUID]*Booking),
		attendance:  make(map[uuid.UUID]int),
	}
}

func (m *mockRepository) addEvent(capacity *int, requiresApproval bool, groupID *string) *events.Event {
	event := &events.Event{
		ID:               uuid.New(),
		Name:             "Boxing Basics",
		ClassTypeID:      "boxing_basics",
		GroupID:          groupID,
		Capacity:         capacity,
		RequiresApproval: requiresApproval,
	}
	m.events[event.ID] = event
	return event
}

func (m *mockRepository) addMember(groups ...string) uuid.UUID {
	id := uuid.New()
	m.members[id] = groups
	return id
}

func (m *mockRepository) snapshot() (map[uuid.UUID]Booking, map[uuid.UUID]int, int) {
	bookings := make(map[uuid.UUID]Booking, len(m.bookings))
	for id, b := range m.bookings {
		bookings[id] = *b
	}
	attendance := make(map[uuid.UUID]int, len(m.attendance))
	for id, n := range m.attendance {
		attendance[id] = n
	}
	return bookings, attendance, len(m.visits)
}

func (m *mockRepository) WithinTransaction(ctx context.Context, fn func(repo Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	bookings, attendance, visitCount := m.snapshot()
	order := len(m.createdOrder)

	if err := fn(m); err != nil {
		m.bookings = make(map[uuid.UUID]*Booking, len(bookings))
		for id, b := range bookings {
			b := b
			m.bookings[id] = &b
		}
		m.attendance = attendance
		m.visits = m.visits[:visitCount]
		m.createdOrder = m.createdOrder[:order]
		return err
	}
	return nil
}

func (m *mockRepository) LockEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error) {
	event, ok := m.events[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.lockedEvents = append(m.lockedEvents, eventID)
	copied := *event
	return &copied, nil
}

func (m *mockRepository) MemberExists(ctx context.Context, memberID uuid.UUID) (bool, error) {
	_, ok := m.members[memberID]
	return ok, nil
}

func (m *mockRepository) GroupRequiresApproval(ctx context.Context, groupID string) (bool, error) {
	return m.gatedGroups[groupID], nil
}

func (m *mockRepository) MemberInApprovalGroup(ctx context.Context, memberID uuid.UUID) (bool, error) {
	for _, g := range m.members[memberID] {
		if m.gatedGroups[g] {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CountApproved(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range m.bookings {
		if b.EventID == eventID && b.Status == StatusApproved {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) FindByEventAndMember(ctx context.Context, eventID, memberID uuid.UUID) (*Booking, error) {
	for _, b := range m.bookings {
		if b.EventID == eventID && b.MemberID == memberID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) Create(ctx context.Context, booking *Booking) error {
	for _, b := range m.bookings {
		if b.EventID == booking.EventID && b.MemberID == booking.MemberID {
			return gorm.ErrDuplicatedKey
		}
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now().Add(time.Duration(len(m.createdOrder)) * time.Millisecond)
	copied := *booking
	m.bookings[booking.ID] = &copied
	m.createdOrder = append(m.createdOrder, booking.ID)
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepository) Save(ctx context.Context, booking *Booking) error {
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockRepository) List(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	var matched []Booking
	for _, b := range m.bookings {
		if query.EventID != nil && b.EventID != *query.EventID {
			continue
		}
		if query.MemberID != nil && b.MemberID != *query.MemberID {
			continue
		}
		if query.Status != "" && b.Status != query.Status {
			continue
		}
		matched = append(matched, *b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *mockRepository) RecordAttendance(ctx context.Context, memberID, eventID uuid.UUID, at time.Time) error {
	if m.recordAttendanceErr != nil {
		return m.recordAttendanceErr
	}
	m.attendance[memberID]++
	m.visits = append(m.visits, visit{memberID: memberID, eventID: eventID})
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []*notifications.DomainEvent
}

func (p *mockPublisher) Publish(ctx context.Context, event *notifications.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) types() []notifications.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifications.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
