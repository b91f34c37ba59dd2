package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a studio domain event published after a successful commit
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingApproved  EventType = "booking.approved"
	EventBookingCancelled EventType = "booking.cancelled"
	EventRefundCreated    EventType = "refund.created"
	EventMemberCheckedIn  EventType = "member.checked_in"
	EventWhatsAppStatus   EventType = "whatsapp.status"
)

type DomainEvent struct {
	ID          uuid.UUID              `json:"id"`
	Type        EventType              `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// NewDomainEvent stamps a new event with an id and the current time
func NewDomainEvent(eventType EventType, aggregateID string, payload map[string]interface{}) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

func (e *DomainEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey keeps every event of one aggregate on the same partition
func (e *DomainEvent) GetPartitionKey() string {
	return e.AggregateID
}
