package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Service interface defines the booking lifecycle
type Service interface {
	Create(ctx context.Context, eventID, memberID uuid.UUID) (*Booking, error)
	Approve(ctx context.Context, bookingID uuid.UUID, approvedBy string) (*Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	List(ctx context.Context, query ListQuery) (*response.Page[Booking], error)
}

type service struct {
	repo      Repository
	publisher notifications.Publisher
	cache     cache.Service
	log       *logger.Logger
	now       func() time.Time
}

var errBookingNotFound = apperror.WithMessage(apperror.ErrNotFound, "Booking not found")

// NewService creates a booking service. publisher and cacheService may be nil.
func NewService(repo Repository, publisher notifications.Publisher, cacheService cache.Service) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		cache:     cacheService,
		log:       logger.GetDefault(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, eventID, memberID uuid.UUID) (*Booking, error) {
	var booking *Booking

	err := s.repo.WithinTransaction(ctx, func(repo Repository) error {
		event, err := repo.LockEvent(ctx, eventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrInvalidReference
		}
		if err != nil {
			return fmt.Errorf("failed to lock event: %w", err)
		}

		exists, err := repo.MemberExists(ctx, memberID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.ErrInvalidReference
		}

		existing, err := repo.FindByEventAndMember(ctx, eventID, memberID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.ErrDuplicateBooking
		}

		// Capacity is enforced even when the booking will wait for approval
		if event.HasCapacityLimit() {
			approved, err := repo.CountApproved(ctx, eventID)
			if err != nil {
				return err
			}
			if approved >= int64(*event.Capacity) {
				return apperror.ErrCapacityExceeded
			}
		}

		requiresApproval := event.RequiresApproval
		if !requiresApproval && event.GroupID != nil {
			if requiresApproval, err = repo.GroupRequiresApproval(ctx, *event.GroupID); err != nil {
				return err
			}
		}
		if !requiresApproval {
			if requiresApproval, err = repo.MemberInApprovalGroup(ctx, memberID); err != nil {
				return err
			}
		}

		now := s.now()
		booking = &Booking{
			EventID:  eventID,
			MemberID: memberID,
			Status:   StatusPending,
		}
		if !requiresApproval {
			booking.Status = StatusApproved
			booking.ApprovedAt = &now
		}

		if err := repo.Create(ctx, booking); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.ErrDuplicateBooking
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if booking.Status == StatusApproved {
			if err := repo.RecordAttendance(ctx, memberID, eventID, now); err != nil {
				return fmt.Errorf("failed to record attendance: %w", err)
			}
		}
		return nil
	})

	s.observe("create", err)
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), eventID.String(), memberID.String(), booking.Status.String())
	s.afterCommit(ctx, notifications.EventBookingCreated, booking)
	return booking, nil
}

func (s *service) Approve(ctx context.Context, bookingID uuid.UUID, approvedBy string) (*Booking, error) {
	var booking *Booking
	transitioned := false

	err := s.repo.WithinTransaction(ctx, func(repo Repository) error {
		current, err := repo.GetByID(ctx, bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}
		if current.Status == StatusApproved {
			booking = current
			return nil
		}
		if current.Status.IsTerminal() {
			return apperror.ErrInvalidTransition
		}

		// Event lock first, then the booking row, same order as Create
		event, err := repo.LockEvent(ctx, current.EventID)
		if err != nil {
			return fmt.Errorf("failed to lock event: %w", err)
		}
		locked, err := repo.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		// Another request may have moved it while we waited on the lock
		if locked.Status == StatusApproved {
			booking = locked
			return nil
		}
		if !locked.Status.CanBeApproved() {
			return apperror.ErrInvalidTransition
		}

		if event.HasCapacityLimit() {
			approved, err := repo.CountApproved(ctx, event.ID)
			if err != nil {
				return err
			}
			if approved >= int64(*event.Capacity) {
				return apperror.ErrCapacityExceeded
			}
		}

		now := s.now()
		locked.Status = StatusApproved
		locked.ApprovedAt = &now
		if approvedBy != "" {
			locked.ApprovedBy = &approvedBy
		}
		if err := repo.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to approve booking: %w", err)
		}
		if err := repo.RecordAttendance(ctx, locked.MemberID, locked.EventID, now); err != nil {
			return fmt.Errorf("failed to record attendance: %w", err)
		}

		booking = locked
		transitioned = true
		return nil
	})

	s.observe("approve", err)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.log.LogBookingTransition(ctx, booking.ID.String(), StatusPending.String(), StatusApproved.String())
		s.afterCommit(ctx, notifications.EventBookingApproved, booking)
	}
	return booking, nil
}

func (s *service) Cancel(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	var booking *Booking
	var previous Status
	transitioned := false

	err := s.repo.WithinTransaction(ctx, func(repo Repository) error {
		current, err := repo.GetByID(ctx, bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}
		if current.Status == StatusCancelled {
			booking = current
			return nil
		}

		if _, err := repo.LockEvent(ctx, current.EventID); err != nil {
			return fmt.Errorf("failed to lock event: %w", err)
		}
		locked, err := repo.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if locked.Status == StatusCancelled {
			booking = locked
			return nil
		}

		previous = locked.Status
		now := s.now()
		locked.Status = StatusCancelled
		locked.CancelledAt = &now
		if err := repo.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}
		booking = locked
		transitioned = true
		return nil
	})

	s.observe("cancel", err)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return booking, nil
	}

	s.log.LogBookingTransition(ctx, booking.ID.String(), previous.String(), StatusCancelled.String())
	s.afterCommit(ctx, notifications.EventBookingCancelled, booking)
	return booking, nil
}

func (s *service) Get(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*response.Page[Booking], error) {
	query.Normalize()
	if query.Status != "" && !query.Status.IsValid() {
		return nil, apperror.WithMessage(apperror.ErrBadRequest, "Invalid status filter")
	}

	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Booking{}
	}
	return &response.Page[Booking]{
		Items:    items,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// afterCommit runs side effects that must not roll back the transition
func (s *service) afterCommit(ctx context.Context, eventType notifications.EventType, booking *Booking) {
	notifications.PublishAfterCommit(ctx, s.publisher, notifications.NewDomainEvent(eventType, booking.ID.String(), map[string]interface{}{
		"event_id":  booking.EventID.String(),
		"member_id": booking.MemberID.String(),
		"status":    booking.Status.String(),
	}))
	cache.InvalidatePattern(ctx, s.cache, constants.PATTERN_INVALIDATE_ANALYTICS)
}

func (s *service) observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			outcome = metrics.OutcomeRejected
		}
	}
	metrics.BookingTransitionsTotal.WithLabelValues(operation, outcome).Inc()
}
