package database

import (
	"fmt"

	"gorm.io/gorm"
)

type foreignKey struct {
	name     string
	table    string
	column   string
	refTable string
	onDelete string
}

// Booking and visit rows reference their parents by id without gorm
// associations, so the keys are declared here
var foreignKeys = []foreignKey{
	{name: "fk_bookings_event", table: "bookings", column: "event_id", refTable: "events", onDelete: "CASCADE"},
	{name: "fk_bookings_member", table: "bookings", column: "member_id", refTable: "members", onDelete: "CASCADE"},
	{name: "fk_member_visits_member", table: "member_visits", column: "member_id", refTable: "members", onDelete: "CASCADE"},
	{name: "fk_member_visits_event", table: "member_visits", column: "event_id", refTable: "events", onDelete: "SET NULL"},
	{name: "fk_events_class_type", table: "events", column: "class_type_id", refTable: "class_types", onDelete: "RESTRICT"},
	{name: "fk_events_group", table: "events", column: "group_id", refTable: "groups", onDelete: "SET NULL"},
	{name: "fk_payments_member", table: "payments", column: "member_id", refTable: "members", onDelete: "SET NULL"},
}

// MigrateConstraints adds the keys and indexes AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	for _, fk := range foreignKeys {
		// Postgres has no ADD CONSTRAINT IF NOT EXISTS
		stmt := fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s;
	END IF;
END $$;`, fk.name, fk.table, fk.name, fk.column, fk.refTable, fk.onDelete)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", fk.name, err)
		}
	}

	// Distinct delivered/read counts scan status events by status and time
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_whatsapp_status_events_status_created
		ON whatsapp_status_events (status, created_at);
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create status event index: %w", err)
	}

	// Attendance by class type filters approved bookings by creation time
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_created
		ON bookings (status, created_at);
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create booking status index: %w", err)
	}

	return nil
}
