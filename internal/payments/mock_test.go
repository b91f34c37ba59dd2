package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type mockRepository struct {
	txMu sync.Mutex

	members  map[uuid.UUID]bool
	payments map[uuid.UUID]*Payment
	refunds  []Refund

	createRefundErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		members:  make(map[uuid.UUID]bool),
		payments: make(map[uuid.UUID]*Payment),
	}
}

func (m *mockRepository) addPayment(amount int64, status string) *Payment {
	p := &Payment{ID: uuid.New(), AmountCents: amount, Currency: DefaultCurrency, Status: status}
	m.payments[p.ID] = p
	return p
}

func (m *mockRepository) WithinTransaction(ctx context.Context, fn func(repo Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	saved := make(map[uuid.UUID]Payment, len(m.payments))
	for id, p := range m.payments {
		saved[id] = *p
	}
	refundCount := len(m.refunds)

	if err := fn(m); err != nil {
		for id, p := range saved {
			p := p
			m.payments[id] = &p
		}
		m.refunds = m.refunds[:refundCount]
		return err
	}
	return nil
}

func (m *mockRepository) MemberExists(ctx context.Context, memberID uuid.UUID) (bool, error) {
	return m.members[memberID], nil
}

func (m *mockRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *mockRepository) GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) AddRefundedAmount(ctx context.Context, paymentID uuid.UUID, amountCents int64) error {
	m.payments[paymentID].RefundedAmountCents += amountCents
	return nil
}

func (m *mockRepository) CreateRefund(ctx context.Context, refund *Refund) error {
	if m.createRefundErr != nil {
		return m.createRefundErr
	}
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	m.refunds = append(m.refunds, *refund)
	return nil
}

func (m *mockRepository) ListPayments(ctx context.Context, query PaymentQuery) ([]Payment, int64, error) {
	var items []Payment
	for _, p := range m.payments {
		if query.Status != "" && p.Status != query.Status {
			continue
		}
		if query.MemberID != nil && (p.MemberID == nil || *p.MemberID != *query.MemberID) {
			continue
		}
		items = append(items, *p)
	}
	return items, int64(len(items)), nil
}

func (m *mockRepository) ListRefunds(ctx context.Context, query RefundQuery) ([]Refund, int64, error) {
	var items []Refund
	for _, r := range m.refunds {
		if query.PaymentID != nil && r.PaymentID != *query.PaymentID {
			continue
		}
		items = append(items, r)
	}
	return items, int64(len(items)), nil
}
