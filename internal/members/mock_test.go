package members

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type mockRepository struct {
	mu      sync.Mutex
	members map[uuid.UUID]*Member
	visits  []Visit
	failErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{members: make(map[uuid.UUID]*Member)}
}

func (m *mockRepository) addMember(name string) *Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	member := &Member{ID: uuid.New(), FullName: name}
	m.members[member.ID] = member
	return member
}

func (m *mockRepository) Create(ctx context.Context, member *Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	m.members[member.ID] = member
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *member
	return &copied, nil
}

func (m *mockRepository) CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	member, ok := m.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	member.AttendanceCount++
	member.LastActive = &at
	m.visits = append(m.visits, Visit{TS: at, MemberID: id, Source: SourceQRCheckIn})
	copied := *member
	return &copied, nil
}

func (m *mockRepository) UpsertGroup(ctx context.Context, group *Group) error {
	return errors.New("not implemented")
}

func (m *mockRepository) UpsertCampaign(ctx context.Context, campaign *Campaign) error {
	return errors.New("not implemented")
}

func (m *mockRepository) AddToGroups(ctx context.Context, member *Member, groupIDs ...string) error {
	return errors.New("not implemented")
}
