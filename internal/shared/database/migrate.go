package database

import (
	"ticketly/internal/tickets"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&tickets.Ticket{},
	)
}
