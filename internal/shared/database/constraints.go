package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the storage-level guarantees issuance relies on:
// QR codes are globally unique and ticket lookups by event or user are
// index-backed.
func MigrateConstraints(db *gorm.DB) error {
	// Uniqueness of qr_code backs the collision guarantee of the code
	// generator; a violation surfaces as a persistence conflict.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_qr_code
		ON tickets (qr_code);
	`).Error
	if err != nil {
		return err
	}

	// Secondary lookup index for per-event reporting queries
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_event_id
		ON tickets (event_id);
	`).Error
	if err != nil {
		return err
	}

	// Secondary lookup index for per-user ticket listings
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_user_id
		ON tickets (user_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
