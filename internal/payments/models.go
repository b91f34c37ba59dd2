package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusCreated   = "created"
	StatusSucceeded = "succeeded"

	RefundStatusRequested = "requested"

	DefaultCurrency = "usd"
	DefaultProvider = "stripe"
)

// Payment is a monetary transaction in minor units. Status is free-form;
// only "succeeded" is significant to analytics.
type Payment struct {
	ID                      uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	MemberID                *uuid.UUID `json:"member_id" gorm:"type:uuid;index"`
	AmountCents             int64      `json:"amount_cents" gorm:"not null;check:amount_cents >= 0"`
	Currency                string     `json:"currency" gorm:"size:8;not null;default:'usd'"`
	Status                  string     `json:"status" gorm:"size:32;not null;default:'created';index"`
	Provider                string     `json:"provider" gorm:"size:32;not null;default:'stripe'"`
	ProviderPaymentIntentID *string    `json:"provider_payment_intent_id" gorm:"size:128;index"`
	ProviderChargeID        *string    `json:"provider_charge_id" gorm:"size:128;index"`
	Description             *string    `json:"description" gorm:"type:text"`
	RefundedAmountCents     int64      `json:"refunded_amount_cents" gorm:"not null;default:0;check:refunded_amount_cents >= 0 AND refunded_amount_cents <= amount_cents"`
	CreatedAt               time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Refundable is the amount still available for refunds
func (p *Payment) Refundable() int64 {
	return p.AmountCents - p.RefundedAmountCents
}

func (Payment) TableName() string {
	return "payments"
}

type Refund struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PaymentID        uuid.UUID `json:"payment_id" gorm:"type:uuid;not null;index"`
	AmountCents      int64     `json:"amount_cents" gorm:"not null;check:amount_cents > 0"`
	Reason           *string   `json:"reason" gorm:"size:128"`
	Status           string    `json:"status" gorm:"size:32;not null;default:'requested';index"`
	ProviderRefundID *string   `json:"provider_refund_id" gorm:"size:128;index"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Payment *Payment `json:"-" gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Refund) TableName() string {
	return "refunds"
}

// PaymentQuery filters payment listings
type PaymentQuery struct {
	MemberID *uuid.UUID
	Status   string
	Page     int
	PageSize int
}

// RefundQuery filters refund listings
type RefundQuery struct {
	PaymentID *uuid.UUID
	Page      int
	PageSize  int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
