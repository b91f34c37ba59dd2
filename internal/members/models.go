package members

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const StatusActive = "active"

// Visit sources
const (
	SourceBookingApprove = "booking_approve"
	SourceQRCheckIn      = "qr_checkin"
)

type Member struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	FullName       string     `json:"full_name" gorm:"not null;size:255"`
	Gender         *string    `json:"gender,omitempty" gorm:"size:32"`
	DOB            *time.Time `json:"dob,omitempty" gorm:"column:dob;type:date"`
	Phone          *string    `json:"phone,omitempty" gorm:"size:64"`
	Email          *string    `json:"email,omitempty" gorm:"size:255"`
	MembershipType *string    `json:"membership_type,omitempty" gorm:"size:64"`
	JoinDate       *time.Time `json:"join_date,omitempty" gorm:"type:date"`
	LastActive     *time.Time `json:"last_active,omitempty"`

	AttendanceCount int `json:"attendance_count" gorm:"not null;default:0;check:attendance_count >= 0"`

	// Status is an open set; a NULL status is reported as the empty bucket in facts
	Status     *string `json:"status" gorm:"size:32;default:'active';index"`
	Source     *string `json:"source,omitempty" gorm:"size:64"`
	CampaignID *string `json:"campaign_id,omitempty" gorm:"size:64;index"`

	Groups []Group `json:"groups,omitempty" gorm:"many2many:member_groups;"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Group is a member cohort; bookings by or for a gated group need approval
type Group struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`
	Name             string    `json:"name" gorm:"not null;size:255"`
	RequiresApproval bool      `json:"requires_approval" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Campaign is an acquisition campaign members may be attributed to
type Campaign struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Platform  string    `json:"platform" gorm:"size:32;default:'facebook'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Visit is the append-only attendance atom
type Visit struct {
	ID       uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	TS       time.Time  `json:"ts" gorm:"column:ts;not null;index"`
	MemberID uuid.UUID  `json:"member_id" gorm:"type:uuid;not null;index"`
	EventID  *uuid.UUID `json:"event_id,omitempty" gorm:"type:uuid;index"`
	Source   string     `json:"source" gorm:"size:32;not null"`
}

// TableName specifies the table name for GORM
func (Member) TableName() string {
	return "members"
}

func (Group) TableName() string {
	return "groups"
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (Visit) TableName() string {
	return "member_visits"
}
