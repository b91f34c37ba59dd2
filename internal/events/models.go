package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a scheduled class session members can book
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	ClassTypeID string    `json:"class_type_id" gorm:"size:64;not null;index"`
	GroupID     *string   `json:"group_id,omitempty" gorm:"size:64;index"`
	StartsAt    time.Time `json:"start" gorm:"column:starts_at;not null"`
	EndsAt      time.Time `json:"end" gorm:"column:ends_at;not null"`

	// Capacity nil means unlimited
	Capacity         *int `json:"capacity" gorm:"check:capacity IS NULL OR capacity >= 0"`
	RequiresApproval bool `json:"requires_approval" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasCapacityLimit reports whether approved bookings are bounded for this event
func (e *Event) HasCapacityLimit() bool {
	return e.Capacity != nil && *e.Capacity >= 0
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ClassType categorizes events (boxing basics, sparring, ...)
type ClassType struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Level     string    `json:"level" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (ClassType) TableName() string {
	return "class_types"
}
