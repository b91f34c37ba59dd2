package payments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"boxstudio/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestRefundBoundIsCumulative(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	payment := repo.addPayment(1000, StatusSucceeded)

	_, err := svc.CreateRefund(context.Background(), payment.ID, 400, "")
	require.NoError(t, err)

	_, err = svc.CreateRefund(context.Background(), payment.ID, 700, "")
	assert.True(t, apperror.Is(err, apperror.ErrInvalidAmount))
	assert.Equal(t, "Invalid refund amount", apperror.SafeMessage(err))
	assert.EqualValues(t, 400, repo.payments[payment.ID].RefundedAmountCents)

	refund, err := svc.CreateRefund(context.Background(), payment.ID, 600, "injury")
	require.NoError(t, err)
	assert.Equal(t, RefundStatusRequested, refund.Status)
	require.NotNil(t, refund.Reason)
	assert.Equal(t, "injury", *refund.Reason)
	assert.EqualValues(t, 1000, repo.payments[payment.ID].RefundedAmountCents)

	_, err = svc.CreateRefund(context.Background(), payment.ID, 1, "")
	assert.True(t, apperror.Is(err, apperror.ErrInvalidAmount))
}

func TestRefundRejectsNonPositiveAmounts(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	payment := repo.addPayment(1000, StatusSucceeded)

	for _, amount := range []int64{0, -5} {
		_, err := svc.CreateRefund(context.Background(), payment.ID, amount, "")
		assert.True(t, apperror.Is(err, apperror.ErrInvalidAmount), "amount %d", amount)
	}
	assert.Empty(t, repo.refunds)
}

func TestRefundUnknownPaymentCheckedBeforeAmount(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.CreateRefund(context.Background(), uuid.New(), -1, "")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
	assert.Equal(t, "Payment not found", apperror.SafeMessage(err))
}

func TestRefundRollsBackOnWriteFailure(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	payment := repo.addPayment(1000, StatusSucceeded)
	repo.createRefundErr = errors.New("connection reset")

	_, err := svc.CreateRefund(context.Background(), payment.ID, 100, "")
	require.Error(t, err)
	assert.Zero(t, repo.payments[payment.ID].RefundedAmountCents)
}

func TestConcurrentRefundsNeverExceedAmount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	payment := repo.addPayment(1000, StatusSucceeded)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.CreateRefund(context.Background(), payment.ID, 300, "")
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 900, repo.payments[payment.ID].RefundedAmountCents)
	assert.Len(t, repo.refunds, 3)
}

func TestCreatePaymentDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	payment, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{AmountCents: int64Ptr(2500)})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, payment.Status)
	assert.Equal(t, "usd", payment.Currency)
	assert.Equal(t, DefaultProvider, payment.Provider)
	assert.Nil(t, payment.MemberID)
	assert.Zero(t, payment.RefundedAmountCents)

	payment, err = svc.CreatePayment(context.Background(), CreatePaymentRequest{AmountCents: int64Ptr(0), Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "eur", payment.Currency)
}

func TestCreatePaymentValidatesMember(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	member := uuid.New()
	repo.members[member] = true

	payment, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{AmountCents: int64Ptr(100), MemberID: member.String()})
	require.NoError(t, err)
	assert.Equal(t, member, *payment.MemberID)

	_, err = svc.CreatePayment(context.Background(), CreatePaymentRequest{AmountCents: int64Ptr(100), MemberID: uuid.NewString()})
	assert.True(t, apperror.Is(err, apperror.ErrInvalidReference))

	_, err = svc.CreatePayment(context.Background(), CreatePaymentRequest{AmountCents: int64Ptr(-1)})
	assert.True(t, apperror.Is(err, apperror.ErrBadRequest))
}

func TestListRefundsDefaultsPagination(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	page, err := svc.ListRefunds(context.Background(), RefundQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.Total)
}
