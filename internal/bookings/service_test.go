package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boxstudio/internal/notifications"
	"boxstudio/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*mockRepository, *mockPublisher, Service) {
	repo := newMockRepository()
	pub := &mockPublisher{}
	return repo, pub, NewService(repo, pub, nil)
}

func TestCreateApprovesImmediatelyWithoutGates(t *testing.T) {
	repo, pub, svc := newTestService()
	event := repo.addEvent(nil, false, nil)
	member := repo.addMember()

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, booking.Status)
	assert.NotNil(t, booking.ApprovedAt)
	assert.Equal(t, 1, repo.attendance[member])
	require.Len(t, repo.visits, 1)
	assert.Equal(t, event.ID, repo.visits[0].eventID)
	assert.Equal(t, []notifications.EventType{notifications.EventBookingCreated}, pub.types())
	assert.Contains(t, repo.lockedEvents, event.ID)
}

func TestCreatePendingWhenApprovalRequired(t *testing.T) {
	tests := []struct {
		name         string
		eventFlag    bool
		eventGroup   *string
		memberGroups []string
	}{
		{name: "event flag", eventFlag: true},
		{name: "event group flag", eventGroup: strPtr("competition_team")},
		{name: "member group flag", memberGroups: []string{"youth", "competition_team"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newTestService()
			repo.gatedGroups["competition_team"] = true
			event := repo.addEvent(nil, tt.eventFlag, tt.eventGroup)
			member := repo.addMember(tt.memberGroups...)

			booking, err := svc.Create(context.Background(), event.ID, member)
			require.NoError(t, err)
			assert.Equal(t, StatusPending, booking.Status)
			assert.Zero(t, repo.attendance[member])
			assert.Empty(t, repo.visits)
		})
	}
}

func TestCreateUngatedGroupDoesNotRequireApproval(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(nil, false, strPtr("youth"))
	member := repo.addMember("youth")

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, booking.Status)
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(nil, false, nil)
	member := repo.addMember()

	_, err := svc.Create(context.Background(), uuid.New(), member)
	assert.True(t, apperror.Is(err, apperror.ErrInvalidReference))
	assert.Equal(t, "Invalid event_id or member_id", apperror.SafeMessage(err))

	_, err = svc.Create(context.Background(), event.ID, uuid.New())
	assert.True(t, apperror.Is(err, apperror.ErrInvalidReference))
	assert.Empty(t, repo.bookings)
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(nil, true, nil)
	member := repo.addMember()

	_, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), event.ID, member)
	assert.True(t, apperror.Is(err, apperror.ErrDuplicateBooking))
	assert.Equal(t, 409, apperror.StatusCode(err))
	assert.Len(t, repo.bookings, 1)
}

func TestCreateEnforcesCapacityEvenForPendingBookings(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(intPtr(1), false, nil)

	_, err := svc.Create(context.Background(), event.ID, repo.addMember())
	require.NoError(t, err)

	repo.events[event.ID].RequiresApproval = true
	_, err = svc.Create(context.Background(), event.ID, repo.addMember())
	assert.True(t, apperror.Is(err, apperror.ErrCapacityExceeded))
}

func TestCreateZeroCapacityAlwaysFull(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(intPtr(0), false, nil)

	_, err := svc.Create(context.Background(), event.ID, repo.addMember())
	assert.True(t, apperror.Is(err, apperror.ErrCapacityExceeded))
}

func TestApproveIsIdempotent(t *testing.T) {
	repo, pub, svc := newTestService()
	event := repo.addEvent(nil, true, nil)
	member := repo.addMember()

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)

	first, err := svc.Approve(context.Background(), booking.ID, "coach")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, first.Status)
	require.NotNil(t, first.ApprovedBy)
	assert.Equal(t, "coach", *first.ApprovedBy)

	second, err := svc.Approve(context.Background(), booking.ID, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, second.Status)
	assert.Equal(t, "coach", *second.ApprovedBy)

	assert.Equal(t, 1, repo.attendance[member])
	assert.Len(t, repo.visits, 1)
	assert.Equal(t, []notifications.EventType{
		notifications.EventBookingCreated,
		notifications.EventBookingApproved,
	}, pub.types())
}

func TestApproveRechecksCapacity(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(intPtr(1), true, nil)

	a, err := svc.Create(context.Background(), event.ID, repo.addMember())
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), event.ID, repo.addMember())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), a.ID, "coach")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), b.ID, "coach")
	assert.True(t, apperror.Is(err, apperror.ErrCapacityExceeded))

	still, err := svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, still.Status)
}

func TestConcurrentApprovalsNeverExceedCapacityOne(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(intPtr(1), true, nil)

	var ids []uuid.UUID
	for i := 0; i < 8; i++ {
		b, err := svc.Create(context.Background(), event.ID, repo.addMember())
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.Approve(context.Background(), id, "coach")
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.ErrCapacityExceeded))
	}
	assert.Equal(t, 1, succeeded)

	approved, err := repo.CountApproved(context.Background(), event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, approved)
}

func TestApproveUnknownBooking(t *testing.T) {
	_, _, svc := newTestService()
	_, err := svc.Approve(context.Background(), uuid.New(), "coach")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
	assert.Equal(t, "Booking not found", apperror.SafeMessage(err))
}

func TestApproveCancelledIsRejected(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(nil, true, nil)
	member := repo.addMember()

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), booking.ID, "coach")
	assert.True(t, apperror.Is(err, apperror.ErrInvalidTransition))

	current, err := svc.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, current.Status)
	assert.Zero(t, repo.attendance[member])
}

func TestApproveRollsBackWhenAttendanceFails(t *testing.T) {
	repo, pub, svc := newTestService()
	event := repo.addEvent(nil, true, nil)
	member := repo.addMember()

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)

	repo.recordAttendanceErr = errors.New("disk full")
	_, err = svc.Approve(context.Background(), booking.ID, "coach")
	require.Error(t, err)
	assert.Equal(t, 500, apperror.StatusCode(err))

	current, err := svc.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, current.Status)
	assert.Nil(t, current.ApprovedBy)
	assert.Zero(t, repo.attendance[member])
	assert.Empty(t, repo.visits)
	assert.Equal(t, []notifications.EventType{notifications.EventBookingCreated}, pub.types())
}

func TestCreateRollsBackWhenAttendanceFails(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(nil, false, nil)
	repo.recordAttendanceErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), event.ID, repo.addMember())
	require.Error(t, err)
	assert.Empty(t, repo.bookings)
}

func TestCancelIsUnconditionalAndKeepsAttendance(t *testing.T) {
	repo, pub, svc := newTestService()
	event := repo.addEvent(nil, false, nil)
	member := repo.addMember()

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, booking.Status)

	cancelled, err := svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 1, repo.attendance[member])

	again, err := svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)

	assert.Contains(t, pub.types(), notifications.EventBookingCancelled)
}

func TestCancelIsIdempotent(t *testing.T) {
	repo, pub, svc := newTestService()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return clock }
	event := repo.addEvent(nil, false, nil)
	member := repo.addMember()

	booking, err := svc.Create(context.Background(), event.ID, member)
	require.NoError(t, err)

	first, err := svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CancelledAt)

	clock = clock.Add(time.Hour)
	second, err := svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, second.Status)
	require.NotNil(t, second.CancelledAt)
	assert.True(t, first.CancelledAt.Equal(*second.CancelledAt))
	assert.True(t, repo.bookings[booking.ID].CancelledAt.Equal(*first.CancelledAt))

	assert.Equal(t, []notifications.EventType{
		notifications.EventBookingCreated,
		notifications.EventBookingCancelled,
	}, pub.types())
}

func TestCancelUnknownBooking(t *testing.T) {
	_, _, svc := newTestService()
	_, err := svc.Cancel(context.Background(), uuid.New())
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
}

func TestCancelledSeatFreesCapacity(t *testing.T) {
	repo, _, svc := newTestService()
	event := repo.addEvent(intPtr(1), false, nil)

	first, err := svc.Create(context.Background(), event.ID, repo.addMember())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), first.ID)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), event.ID, repo.addMember())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, second.Status)
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo, _, svc := newTestService()
	open := repo.addEvent(nil, false, nil)
	gated := repo.addEvent(nil, true, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), open.ID, repo.addMember())
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), gated.ID, repo.addMember())
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt))
	}

	pending, err := svc.List(context.Background(), ListQuery{Status: StatusPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending.Total)

	byEvent, err := svc.List(context.Background(), ListQuery{EventID: &open.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, byEvent.Total)
	assert.Len(t, byEvent.Items, 1)

	_, err = svc.List(context.Background(), ListQuery{Status: "bogus"})
	assert.True(t, apperror.Is(err, apperror.ErrBadRequest))
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, PageSize: 10000}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, 0, q.Offset())
}
