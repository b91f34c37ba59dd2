package bookings

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	EventID  string `json:"event_id" binding:"required,uuid"`
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// ApproveBookingRequest is the optional body of POST /bookings/:id/approve
type ApproveBookingRequest struct {
	ApprovedBy string `json:"approved_by" binding:"omitempty,max=255"`
}

// ListBookingsRequest holds the query string of GET /bookings
type ListBookingsRequest struct {
	EventID  string `form:"event_id" binding:"omitempty,uuid"`
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}
