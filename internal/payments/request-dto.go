package payments

type CreatePaymentRequest struct {
	MemberID    string `json:"member_id" binding:"omitempty,uuid"`
	AmountCents *int64 `json:"amount_cents" binding:"required,min=0"`
	Currency    string `json:"currency" binding:"omitempty,max=8"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// CreateRefundRequest leaves amount bounds to the service so the payment lookup runs first
type CreateRefundRequest struct {
	PaymentID   string `json:"payment_id" binding:"required,uuid"`
	AmountCents *int64 `json:"amount_cents" binding:"required"`
	Reason      string `json:"reason" binding:"omitempty,max=128"`
}

type ListPaymentsRequest struct {
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,max=32"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

type ListRefundsRequest struct {
	PaymentID string `form:"payment_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}
