package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boxstudio/internal/notifications"
	"boxstudio/internal/shared/apperror"
	"boxstudio/internal/shared/constants"
	"boxstudio/internal/shared/utils/response"
	"boxstudio/pkg/cache"
	"boxstudio/pkg/logger"
	"boxstudio/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	ListPayments(ctx context.Context, query PaymentQuery) (*response.Page[Payment], error)
	CreateRefund(ctx context.Context, paymentID uuid.UUID, amountCents int64, reason string) (*Refund, error)
	ListRefunds(ctx context.Context, query RefundQuery) (*response.Page[Refund], error)
}

type service struct {
	repo      Repository
	publisher notifications.Publisher
	cache     cache.Service
	log       *logger.Logger
}

var (
	errPaymentNotFound = apperror.WithMessage(apperror.ErrNotFound, "Payment not found")
	errInvalidMember   = apperror.WithMessage(apperror.ErrInvalidReference, "Invalid member_id")
)

func NewService(repo Repository, publisher notifications.Publisher, cacheService cache.Service) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		cache:     cacheService,
		log:       logger.GetDefault(),
	}
}

func (s *service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if req.AmountCents == nil || *req.AmountCents < 0 {
		return nil, apperror.WithMessage(apperror.ErrBadRequest, "amount_cents must be >= 0")
	}

	payment := &Payment{
		AmountCents: *req.AmountCents,
		Currency:    strings.ToLower(strings.TrimSpace(req.Currency)),
		Status:      StatusCreated,
		Provider:    DefaultProvider,
	}
	if payment.Currency == "" {
		payment.Currency = DefaultCurrency
	}
	if req.Description != "" {
		payment.Description = &req.Description
	}

	if req.MemberID != "" {
		memberID, err := uuid.Parse(req.MemberID)
		if err != nil {
			return nil, errInvalidMember
		}
		exists, err := s.repo.MemberExists(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errInvalidMember
		}
		payment.MemberID = &memberID
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	cache.InvalidatePattern(ctx, s.cache, constants.PATTERN_INVALIDATE_ANALYTICS)
	return payment, nil
}

// CreateRefund validates against the locked payment row so concurrent refunds
// can never push refunded_amount_cents past amount_cents
func (s *service) CreateRefund(ctx context.Context, paymentID uuid.UUID, amountCents int64, reason string) (*Refund, error) {
	var refund *Refund

	err := s.repo.WithinTransaction(ctx, func(repo Repository) error {
		payment, err := repo.GetPaymentForUpdate(ctx, paymentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}

		if amountCents <= 0 || amountCents > payment.Refundable() {
			return apperror.ErrInvalidAmount
		}

		refund = &Refund{
			PaymentID:   payment.ID,
			AmountCents: amountCents,
			Status:      RefundStatusRequested,
		}
		if reason != "" {
			refund.Reason = &reason
		}
		if err := repo.CreateRefund(ctx, refund); err != nil {
			return fmt.Errorf("failed to create refund: %w", err)
		}
		if err := repo.AddRefundedAmount(ctx, payment.ID, amountCents); err != nil {
			return fmt.Errorf("failed to update refunded amount: %w", err)
		}
		return nil
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if apperror.Is(err, apperror.ErrInvalidAmount) || apperror.Is(err, apperror.ErrNotFound) {
			outcome = metrics.OutcomeRejected
		}
		metrics.RefundsTotal.WithLabelValues(outcome).Inc()
		return nil, err
	}

	metrics.RefundsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.log.LogRefundCreated(ctx, refund.ID.String(), paymentID.String(), amountCents)
	notifications.PublishAfterCommit(ctx, s.publisher, notifications.NewDomainEvent(notifications.EventRefundCreated, refund.ID.String(), map[string]interface{}{
		"payment_id":   paymentID.String(),
		"amount_cents": amountCents,
	}))
	cache.InvalidatePattern(ctx, s.cache, constants.PATTERN_INVALIDATE_ANALYTICS)
	return refund, nil
}

func (s *service) ListPayments(ctx context.Context, query PaymentQuery) (*response.Page[Payment], error) {
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	items, total, err := s.repo.ListPayments(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Payment{}
	}
	return &response.Page[Payment]{Items: items, Total: total, Page: query.Page, PageSize: query.PageSize}, nil
}

func (s *service) ListRefunds(ctx context.Context, query RefundQuery) (*response.Page[Refund], error) {
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	items, total, err := s.repo.ListRefunds(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Refund{}
	}
	return &response.Page[Refund]{Items: items, Total: total, Page: query.Page, PageSize: query.PageSize}, nil
}
