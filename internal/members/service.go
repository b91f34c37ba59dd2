package members

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"boxstudio/internal/notifications"
	"boxstudio/internal/shared/apperror"
	"boxstudio/internal/shared/constants"
	"boxstudio/pkg/cache"
	"boxstudio/pkg/logger"
	"boxstudio/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errMemberNotFound = apperror.WithMessage(apperror.ErrNotFound, "Member not found")

type Service interface {
	CheckIn(ctx context.Context, token, memberID string) (*Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
}

type service struct {
	repo      Repository
	qrToken   string
	publisher notifications.Publisher
	cache     cache.Service
	now       func() time.Time
	log       *logger.Logger
}

func NewService(repo Repository, qrToken string, publisher notifications.Publisher, cacheService cache.Service) Service {
	return &service{
		repo:      repo,
		qrToken:   qrToken,
		publisher: publisher,
		cache:     cacheService,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.GetDefault(),
	}
}

// CheckIn records one QR visit: attendance +1, last_active and a visit row, atomically
func (s *service) CheckIn(ctx context.Context, token, memberID string) (*Member, error) {
	if s.qrToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.qrToken)) != 1 {
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperror.ErrUnauthorized
	}

	id, err := uuid.Parse(memberID)
	if err != nil {
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, errMemberNotFound
	}

	member, err := s.repo.CheckIn(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, errMemberNotFound
		}
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to check in member: %w", err)
	}

	metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.log.LogCheckIn(ctx, member.ID.String())
	notifications.PublishAfterCommit(ctx, s.publisher, notifications.NewDomainEvent(notifications.EventMemberCheckedIn, member.ID.String(), map[string]interface{}{
		"attendance_count": member.AttendanceCount,
		"source":           SourceQRCheckIn,
	}))
	cache.InvalidatePattern(ctx, s.cache, constants.PATTERN_INVALIDATE_ANALYTICS)
	return member, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}
