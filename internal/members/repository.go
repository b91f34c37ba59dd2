package members

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (*Member, error)

	UpsertGroup(ctx context.Context, group *Group) error
	UpsertCampaign(ctx context.Context, campaign *Campaign) error
	AddToGroups(ctx context.Context, member *Member, groupIDs ...string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// RecordAttendance increments the member's attendance counter and appends one
// visit. Callers pass a transaction handle so both writes commit together with
// whatever status change produced them.
func RecordAttendance(tx *gorm.DB, memberID uuid.UUID, eventID *uuid.UUID, source string, at time.Time) error {
	res := tx.Model(&Member{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"attendance_count": gorm.Expr("attendance_count + 1"),
			"last_active":      at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment attendance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	visit := &Visit{
		TS:       at,
		MemberID: memberID,
		EventID:  eventID,
		Source:   source,
	}
	if err := tx.Create(visit).Error; err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

func (r *repository) Create(ctx context.Context, member *Member) error {
	return r.db.WithContext(ctx).Omit("Groups.*").Create(member).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	var member Member
	err := r.db.WithContext(ctx).Preload("Groups").Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (*Member, error) {
	var member Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := RecordAttendance(tx, id, nil, SourceQRCheckIn, at); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) UpsertGroup(ctx context.Context, group *Group) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(group).Error
}

func (r *repository) UpsertCampaign(ctx context.Context, campaign *Campaign) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(campaign).Error
}

func (r *repository) AddToGroups(ctx context.Context, member *Member, groupIDs ...string) error {
	groups := make([]Group, 0, len(groupIDs))
	for _, id := range groupIDs {
		groups = append(groups, Group{ID: id})
	}
	return r.db.WithContext(ctx).Model(member).Omit("Groups.*").Association("Groups").Append(groups)
}
