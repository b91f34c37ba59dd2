package whatsapp

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithinTransaction(ctx context.Context, fn func(repo Repository) error) error

	CreateMessage(ctx context.Context, message *Message) error
	AppendStatusEvent(ctx context.Context, event *StatusEvent) error
	// MirrorStatus copies status onto the message; a missing message is not an error
	MirrorStatus(ctx context.Context, messageID, status string) (bool, error)
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

func (r *repository) CreateMessage(ctx context.Context, message *Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) AppendStatusEvent(ctx context.Context, event *StatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) MirrorStatus(ctx context.Context, messageID, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", messageID).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
