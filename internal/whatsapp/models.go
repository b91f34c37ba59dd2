package whatsapp

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageStatusQueued = "queued"
	DefaultProvider     = "whatsapp"
)

// Message is an outbound group or member message. Status mirrors the latest callback.
type Message struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	GroupID     *string    `json:"group_id" gorm:"size:64;index"`
	MemberID    *uuid.UUID `json:"member_id" gorm:"type:uuid"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	Status      string     `json:"status" gorm:"size:32;not null;default:'queued';index"`
	Provider    string     `json:"provider" gorm:"size:32;not null;default:'whatsapp'"`
	ProviderRef *string    `json:"provider_ref" gorm:"size:128"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (Message) TableName() string {
	return "whatsapp_messages"
}

// StatusEvent is an append-only provider callback. MessageID carries no foreign
// key: callbacks may reference messages this store never saw.
type StatusEvent struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID  string     `json:"message_id" gorm:"size:64;not null;index"`
	Status     string     `json:"status" gorm:"size:32;not null;index"`
	ErrorCode  *string    `json:"error_code" gorm:"size:64"`
	ProviderTS *time.Time `json:"provider_ts,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

func (StatusEvent) TableName() string {
	return "whatsapp_status_events"
}
