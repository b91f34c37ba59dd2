package database

import (
	"fmt"

	"boxstudio/internal/bookings"
	"boxstudio/internal/events"
	"boxstudio/internal/members"
	"boxstudio/internal/payments"
	"boxstudio/internal/whatsapp"

	"gorm.io/gorm"
)

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&members.Group{},
		&members.Campaign{},
		&members.Member{},
		&events.ClassType{},
		&events.Event{},
		&bookings.Booking{},
		&members.Visit{},
		&payments.Payment{},
		&payments.Refund{},
		&whatsapp.Message{},
		&whatsapp.StatusEvent{},
	}
}

// TableNames lists every table children first, ready for truncation
func TableNames() []string {
	models := Models()
	names := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		if t, ok := models[i].(interface{ TableName() string }); ok {
			names = append(names, t.TableName())
		}
	}
	return names
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return MigrateConstraints(db)
}
