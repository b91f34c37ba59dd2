package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxstudio/internal/events"
	"boxstudio/internal/members"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface defines booking data access.
// Methods called on the handle passed to WithinTransaction share one database transaction.
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(repo Repository) error) error

	// LockEvent reads the event row FOR UPDATE, serializing capacity checks per event
	LockEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error)
	MemberExists(ctx context.Context, memberID uuid.UUID) (bool, error)
	GroupRequiresApproval(ctx context.Context, groupID string) (bool, error)
	MemberInApprovalGroup(ctx context.Context, memberID uuid.UUID) (bool, error)
	CountApproved(ctx context.Context, eventID uuid.UUID) (int64, error)

	FindByEventAndMember(ctx context.Context, eventID, memberID uuid.UUID) (*Booking, error)
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	List(ctx context.Context, query ListQuery) ([]Booking, int64, error)

	RecordAttendance(ctx context.Context, memberID, eventID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new booking repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithinTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) LockEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error) {
	var event events.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) MemberExists(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&members.Member{}).Where("id = ?", memberID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check member: %w", err)
	}
	return count > 0, nil
}

func (r *repository) GroupRequiresApproval(ctx context.Context, groupID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&members.Group{}).
		Where("id = ? AND requires_approval = ?", groupID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check group approval: %w", err)
	}
	return count > 0, nil
}

func (r *repository) MemberInApprovalGroup(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("member_groups mg").
		Joins("JOIN groups g ON g.id = mg.group_id").
		Where("mg.member_id = ? AND g.requires_approval = ?", memberID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check member groups: %w", err)
	}
	return count > 0, nil
}

func (r *repository) CountApproved(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("event_id = ? AND status = ?", eventID, StatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count approved bookings: %w", err)
	}
	return count, nil
}

// FindByEventAndMember returns nil without error when the pair has no booking
func (r *repository) FindByEventAndMember(ctx context.Context, eventID, memberID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND member_id = ?", eventID, memberID).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Save(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{})
	if query.EventID != nil {
		db = db.Where("event_id = ?", *query.EventID)
	}
	if query.MemberID != nil {
		db = db.Where("member_id = ?", *query.MemberID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []Booking
	err := db.Order("created_at DESC").
		Limit(query.PageSize).
		Offset(query.Offset()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *repository) RecordAttendance(ctx context.Context, memberID, eventID uuid.UUID, at time.Time) error {
	return members.RecordAttendance(r.db.WithContext(ctx), memberID, &eventID, members.SourceBookingApprove, at)
}
