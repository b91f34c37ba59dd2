package bookings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is one member's reservation for one event
type Booking struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EventID  uuid.UUID `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_bookings_event_member,priority:1;index:idx_bookings_event_status,priority:1"`
	MemberID uuid.UUID `json:"member_id" gorm:"type:uuid;not null;uniqueIndex:idx_bookings_event_member,priority:2;index"`
	Status   Status    `json:"status" gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','cancelled');index:idx_bookings_event_status,priority:2"`

	ApprovedBy  *string    `json:"approved_by,omitempty" gorm:"size:255"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// ListQuery filters and paginates booking listings
type ListQuery struct {
	EventID  *uuid.UUID
	MemberID *uuid.UUID
	Status   Status
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Normalize applies pagination defaults
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
