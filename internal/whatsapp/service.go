package whatsapp

import (
	"context"
	"fmt"

	"boxstudio/internal/notifications"
	"boxstudio/internal/shared/apperror"
	"boxstudio/internal/shared/constants"
	"boxstudio/pkg/cache"
	"boxstudio/pkg/logger"
	"boxstudio/pkg/metrics"

	"github.com/google/uuid"
)

type Service interface {
	SendGroup(ctx context.Context, req SendGroupRequest) (*Message, error)
	RecordStatus(ctx context.Context, payload StatusPayload) (*StatusEvent, error)
}

// Options tune callback handling
type Options struct {
	// PermissiveStatus stores unrecognized statuses verbatim instead of rejecting them
	PermissiveStatus bool
}

type service struct {
	repo      Repository
	publisher notifications.Publisher
	cache     cache.Service
	opts      Options
	log       *logger.Logger
}

func NewService(repo Repository, publisher notifications.Publisher, cacheService cache.Service, opts Options) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		cache:     cacheService,
		opts:      opts,
		log:       logger.GetDefault(),
	}
}

// SendGroup persists a queued outbound message. Delivery is handled by the provider integration.
func (s *service) SendGroup(ctx context.Context, req SendGroupRequest) (*Message, error) {
	groupID := req.GroupID
	message := &Message{
		GroupID:  &groupID,
		Content:  req.Message,
		Status:   MessageStatusQueued,
		Provider: DefaultProvider,
	}
	if req.MemberID != "" {
		memberID, err := uuid.Parse(req.MemberID)
		if err != nil {
			return nil, apperror.WithMessage(apperror.ErrBadRequest, "Invalid member_id")
		}
		message.MemberID = &memberID
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to queue whatsapp message: %w", err)
	}

	s.log.InfoContext(ctx, "WhatsApp message queued", "message_id", message.ID, "group_id", groupID)
	cache.InvalidatePattern(ctx, s.cache, constants.PATTERN_INVALIDATE_ANALYTICS)
	return message, nil
}

// RecordStatus appends one status event and mirrors it onto the message in the same transaction
func (s *service) RecordStatus(ctx context.Context, payload StatusPayload) (*StatusEvent, error) {
	outcome := Normalize(payload)
	if outcome.MessageID == "" {
		return nil, apperror.WithMessage(apperror.ErrBadRequest, "message_id is required")
	}

	status := string(outcome.Status)
	if outcome.Unrecognized {
		if !s.opts.PermissiveStatus {
			s.log.LogStatusRejected(ctx, outcome.MessageID, outcome.Raw)
			metrics.WhatsAppStatusTotal.WithLabelValues("unrecognized", metrics.OutcomeRejected).Inc()
			return nil, apperror.ErrUnrecognizedStatus
		}
		status = outcome.Raw
	}

	event := &StatusEvent{
		MessageID: outcome.MessageID,
		Status:    status,
	}
	if outcome.ErrorCode != "" {
		code := outcome.ErrorCode
		event.ErrorCode = &code
	}

	err := s.repo.WithinTransaction(ctx, func(repo Repository) error {
		if err := repo.AppendStatusEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to append status event: %w", err)
		}
		if _, err := repo.MirrorStatus(ctx, event.MessageID, event.Status); err != nil {
			return fmt.Errorf("failed to mirror message status: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.WhatsAppStatusTotal.WithLabelValues(metricLabel(outcome), metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.WhatsAppStatusTotal.WithLabelValues(metricLabel(outcome), metrics.OutcomeSuccess).Inc()
	notifications.PublishAfterCommit(ctx, s.publisher, notifications.NewDomainEvent(notifications.EventWhatsAppStatus, event.MessageID, map[string]interface{}{
		"status": event.Status,
	}))
	cache.InvalidatePattern(ctx, s.cache, constants.PATTERN_INVALIDATE_ANALYTICS)
	return event, nil
}

// metricLabel keeps label cardinality bounded when raw statuses pass through
func metricLabel(o Outcome) string {
	if o.Unrecognized {
		return "unrecognized"
	}
	return string(o.Status)
}
