package analytics

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"boxstudio/internal/shared/apperror"
	"boxstudio/internal/shared/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
)

func revenueFixture() *mockRepository {
	repo := newMockRepository()
	repo.payments = []windowRow{
		{at: windowStart, amount: 100},
		{at: windowStart.Add(48 * time.Hour), amount: 200},
		{at: windowStart.Add(-time.Second), amount: 5000},
	}
	repo.refunds = []windowRow{
		{at: windowEnd, amount: 50},
		{at: windowEnd.Add(time.Second), amount: 900},
	}
	return repo
}

func TestWindowedRevenueAndRefundRate(t *testing.T) {
	svc := NewService(revenueFixture(), nil)
	ctx := context.Background()

	revenue, err := svc.RevenueCents(ctx, windowStart, windowEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 250, revenue)

	rate, err := svc.RefundRate(ctx, windowStart, windowEnd)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.InDelta(t, 50.0/300.0, *rate, 1e-6)
}

func TestWindowedRevenueMayBeNegative(t *testing.T) {
	repo := newMockRepository()
	repo.refunds = []windowRow{{at: windowStart, amount: 400}}
	svc := NewService(repo, nil)

	revenue, err := svc.RevenueCents(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	assert.EqualValues(t, -400, revenue)

	rate, err := svc.RefundRate(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	assert.Nil(t, rate)
}

func TestRefundRateNullWithoutPayments(t *testing.T) {
	repo := newMockRepository()
	repo.payments = []windowRow{{at: windowStart, amount: 0}}
	svc := NewService(repo, nil)

	rate, err := svc.RefundRate(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	assert.Nil(t, rate)
	assert.Zero(t, repo.callCount("sum_refunds"))
}

func TestWhatsAppDeliveryRate(t *testing.T) {
	repo := newMockRepository()
	repo.messages = []time.Time{windowStart.Add(time.Hour), windowStart.Add(2 * time.Hour)}
	repo.statuses = []statusEventRow{
		{messageID: "m1", status: "delivered", at: windowStart.Add(3 * time.Hour)},
		{messageID: "m1", status: "read", at: windowStart.Add(4 * time.Hour)},
		{messageID: "m2", status: "error", at: windowStart.Add(4 * time.Hour)},
	}
	svc := NewService(repo, nil)

	rate, err := svc.WhatsAppDeliveryRate(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 0.5, *rate)
}

func TestWhatsAppDeliveryRateCountsMessagesSentBeforeWindow(t *testing.T) {
	repo := newMockRepository()
	repo.messages = []time.Time{windowStart.Add(time.Hour), windowStart.Add(-24 * time.Hour)}
	repo.statuses = []statusEventRow{
		{messageID: "m-in", status: "delivered", at: windowStart.Add(2 * time.Hour)},
		{messageID: "m-before", status: "read", at: windowStart.Add(2 * time.Hour)},
	}
	svc := NewService(repo, nil)

	// one message sent in-window, two delivered in-window
	rate, err := svc.WhatsAppDeliveryRate(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 2.0, *rate)
}

func TestWhatsAppDeliveryRateNullWithoutMessages(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	rate, err := svc.WhatsAppDeliveryRate(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	assert.Nil(t, rate)
}

func TestWindowRejectsInvertedBounds(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	ctx := context.Background()

	_, err := svc.RevenueCents(ctx, windowEnd, windowStart)
	assert.True(t, apperror.Is(err, apperror.ErrInvalidWindow))
	_, err = svc.GetWindowed(ctx, windowEnd, windowStart)
	assert.True(t, apperror.Is(err, apperror.ErrInvalidWindow))

	// a single instant is a valid window
	_, err = svc.GetWindowed(ctx, windowStart, windowStart)
	assert.NoError(t, err)
}

func TestGetWindowedCombinesMetrics(t *testing.T) {
	repo := revenueFixture()
	repo.messages = []time.Time{windowStart, windowEnd}
	repo.statuses = []statusEventRow{{messageID: "m1", status: "delivered", at: windowEnd}}
	svc := NewService(repo, nil)

	w, err := svc.GetWindowed(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 250, w.RevenueCents)
	assert.InDelta(t, 50.0/300.0, *w.RefundRate, 1e-6)
	assert.Equal(t, 0.5, *w.WhatsAppDeliveryRate)
}

func TestStoreFailureIsAggregationUnavailable(t *testing.T) {
	repo := newMockRepository()
	repo.err = errors.New("dial tcp: connection refused")
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.GetFacts(ctx)
	assert.True(t, apperror.Is(err, apperror.ErrAggregationUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, apperror.StatusCode(err))

	_, err = svc.GetKPIs(ctx)
	assert.True(t, apperror.Is(err, apperror.ErrAggregationUnavailable))
	_, err = svc.RevenueCents(ctx, windowStart, windowEnd)
	assert.True(t, apperror.Is(err, apperror.ErrAggregationUnavailable))
	_, err = svc.WhatsAppDeliveryRate(ctx, windowStart, windowEnd)
	assert.True(t, apperror.Is(err, apperror.ErrAggregationUnavailable))
	_, err = svc.GetSummary(ctx)
	assert.True(t, apperror.Is(err, apperror.ErrAggregationUnavailable))
	assert.ErrorIs(t, err, repo.err)
}

func TestEmptyStoreFactsAndKPIs(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	facts, err := svc.GetFacts(context.Background())
	require.NoError(t, err)
	for name, v := range facts.Flatten() {
		switch value := v.(type) {
		case int64:
			assert.Zero(t, value, name)
		case float64:
			assert.Zero(t, value, name)
		case map[string]int64:
			assert.Empty(t, value, name)
		default:
			t.Fatalf("unexpected fact type %T for %s", v, name)
		}
	}

	kpis, err := svc.GetKPIs(context.Background())
	require.NoError(t, err)
	assert.Nil(t, kpis.EventCapacityUtilizationAvg)
	assert.Nil(t, kpis.PaymentsSuccessRate)
}

func TestFactsAreCachedUntilInvalidated(t *testing.T) {
	repo := newMockRepository()
	repo.facts.Members.Total = 7
	repo.facts.Members.ByStatus = map[string]int64{"active": 6, "": 1}
	store := newMemoryCache()
	svc := NewService(repo, store)
	ctx := context.Background()

	first, err := svc.GetFacts(ctx)
	require.NoError(t, err)
	second, err := svc.GetFacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), second.Members.ByStatus[""])
	assert.Equal(t, 1, repo.callCount("facts"))

	require.NoError(t, store.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS))
	_, err = svc.GetFacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount("facts"))
}

func TestNullKPIsSurviveCacheRoundTrip(t *testing.T) {
	repo := newMockRepository()
	repo.kpiInputs = &KPIInputs{PaymentsTotal: 2, PaymentsSucceeded: 1}
	svc := NewService(repo, newMemoryCache())

	_, err := svc.GetKPIs(context.Background())
	require.NoError(t, err)
	kpis, err := svc.GetKPIs(context.Background())
	require.NoError(t, err)

	require.NotNil(t, kpis.PaymentsSuccessRate)
	assert.Equal(t, 0.5, *kpis.PaymentsSuccessRate)
	assert.Nil(t, kpis.WhatsAppErrorRate)
	assert.Equal(t, 1, repo.callCount("kpis"))
}

func TestWindowedCacheSeparatesSubSecondBounds(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := newMockRepository()
	repo.payments = []windowRow{{at: base.Add(700 * time.Millisecond), amount: 100}}
	svc := NewService(repo, newMemoryCache())
	ctx := context.Background()
	end := base.Add(time.Hour)

	late, err := svc.GetWindowed(ctx, base.Add(900*time.Millisecond), end)
	require.NoError(t, err)
	assert.EqualValues(t, 0, late.RevenueCents)

	early, err := svc.GetWindowed(ctx, base.Add(100*time.Millisecond), end)
	require.NoError(t, err)
	assert.EqualValues(t, 100, early.RevenueCents)
}

func TestSummaryAssemblesDashboard(t *testing.T) {
	repo := newMockRepository()
	repo.attendance = map[string]int64{"boxing-basics": 4}
	repo.active = 12
	female := "female"
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.profiles = []MemberProfile{{DOB: &dob, Gender: &female}, {}}
	repo.totals = &Totals{Payments: 3, WhatsAppDeliveredOrRead: 2}
	repo.kpiInputs = &KPIInputs{Utilization: []EventUtilization{{EventID: "e1", Capacity: 10, Approved: 12}}}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.payments = []windowRow{{at: now.Add(-24 * time.Hour), amount: 1000}, {at: now.Add(-40 * 24 * time.Hour), amount: 7}}

	svc := NewService(repo, nil).(*service)
	svc.now = func() time.Time { return now }

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.AttendanceByClassType30d["boxing-basics"])
	assert.Equal(t, int64(12), summary.ActiveMembers)
	assert.Equal(t, map[string]int64{"35_44": 1, "unknown": 1}, summary.DemographicAgeBands)
	assert.Equal(t, map[string]int64{"female": 1, "other": 1}, summary.GenderBreakdown)
	assert.EqualValues(t, 1000, summary.RevenueCents30d)
	require.NotNil(t, summary.AverageUtilizationRate)
	assert.Equal(t, 1.0, *summary.AverageUtilizationRate)
	assert.Equal(t, summary.AverageUtilizationRate, summary.KPIs.EventCapacityUtilizationAvg)
	assert.Nil(t, summary.WhatsAppDeliveryRate30d)
	assert.EqualValues(t, 2, summary.Totals.WhatsAppDeliveredOrRead)
	assert.Equal(t, now, summary.GeneratedAt)
}

func TestGetMetric(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	m, err := svc.GetMetric("payments.count")
	require.NoError(t, err)
	assert.Equal(t, CategoryFact, m.Category)

	_, err = svc.GetMetric("payments.nope")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
	assert.Len(t, svc.ListMetrics(), len(All()))
}
