package payments

import (
	"context"
	"fmt"

	"boxstudio/internal/members"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithinTransaction(ctx context.Context, fn func(repo Repository) error) error

	MemberExists(ctx context.Context, memberID uuid.UUID) (bool, error)
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	AddRefundedAmount(ctx context.Context, paymentID uuid.UUID, amountCents int64) error
	CreateRefund(ctx context.Context, refund *Refund) error

	ListPayments(ctx context.Context, query PaymentQuery) ([]Payment, int64, error)
	ListRefunds(ctx context.Context, query RefundQuery) ([]Refund, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithinTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) MemberExists(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&members.Member{}).Where("id = ?", memberID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check member: %w", err)
	}
	return count > 0, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) AddRefundedAmount(ctx context.Context, paymentID uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", paymentID).
		Update("refunded_amount_cents", gorm.Expr("refunded_amount_cents + ?", amountCents)).Error
}

func (r *repository) CreateRefund(ctx context.Context, refund *Refund) error {
	return r.db.WithContext(ctx).Omit("Payment").Create(refund).Error
}

func (r *repository) ListPayments(ctx context.Context, query PaymentQuery) ([]Payment, int64, error) {
	db := r.db.WithContext(ctx).Model(&Payment{})
	if query.MemberID != nil {
		db = db.Where("member_id = ?", *query.MemberID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var items []Payment
	err := db.Order("created_at DESC").
		Limit(query.PageSize).
		Offset((query.Page - 1) * query.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return items, total, nil
}

func (r *repository) ListRefunds(ctx context.Context, query RefundQuery) ([]Refund, int64, error) {
	db := r.db.WithContext(ctx).Model(&Refund{})
	if query.PaymentID != nil {
		db = db.Where("payment_id = ?", *query.PaymentID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count refunds: %w", err)
	}

	var items []Refund
	err := db.Order("created_at DESC").
		Limit(query.PageSize).
		Offset((query.Page - 1) * query.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list refunds: %w", err)
	}
	return items, total, nil
}
