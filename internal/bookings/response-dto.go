package bookings

import "time"

type BookingResponse struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	MemberID    string     `json:"member_id"`
	Status      string     `json:"status"`
	ApprovedBy  *string    `json:"approved_by"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type BookingListResponse struct {
	Items    []BookingResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func ToBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID.String(),
		EventID:     b.EventID.String(),
		MemberID:    b.MemberID.String(),
		Status:      b.Status.String(),
		ApprovedBy:  b.ApprovedBy,
		ApprovedAt:  b.ApprovedAt,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
	}
}
