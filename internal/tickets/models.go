package tickets

import (
	"time"

	"ticketly/internal/shared/faults"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a ticket
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusCancelled      Status = "CANCELLED"
	StatusUsed           Status = "USED"
)

// Ticket is a purchasable admission record tied to an event and
// optionally a specific seat. State transitions are owned exclusively by
// the named methods below; the stored fields are never mutated directly.
type Ticket struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EventID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	UserID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	SeatID       *uuid.UUID      `gorm:"type:uuid" json:"seat_id,omitempty"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	QRCode       string          `gorm:"column:qr_code;uniqueIndex;not null" json:"qr_code"`
	Status       Status          `gorm:"type:varchar(20);not null" json:"status"`
	PurchaseDate time.Time       `json:"purchase_date"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

// NewTicket constructs a ticket in PENDING_PAYMENT. The amount must be
// strictly positive; a zero or negative price upstream is a validation
// fault, not a silently issued free ticket.
func NewTicket(eventID, userID uuid.UUID, seatID *uuid.UUID, amount decimal.Decimal, qrCode string) (*Ticket, error) {
	if eventID == uuid.Nil {
		return nil, faults.Validation("event id is required")
	}
	if userID == uuid.Nil {
		return nil, faults.Validation("user id is required")
	}
	if seatID != nil && *seatID == uuid.Nil {
		return nil, faults.Validation("seat id must not be empty when present")
	}
	if qrCode == "" {
		return nil, faults.Validation("qr code is required")
	}
	if !amount.IsPositive() {
		return nil, faults.Validation("ticket amount must be positive, got %s", amount)
	}

	now := time.Now().UTC()
	return &Ticket{
		ID:           uuid.New(),
		EventID:      eventID,
		UserID:       userID,
		SeatID:       seatID,
		Amount:       amount,
		QRCode:       qrCode,
		Status:       StatusPendingPayment,
		PurchaseDate: now,
		UpdatedAt:    now,
	}, nil
}

// ConfirmPayment moves the ticket from PENDING_PAYMENT to PAID.
func (t *Ticket) ConfirmPayment() error {
	if t.Status != StatusPendingPayment {
		return faults.New(faults.KindInvalidState, "cannot confirm payment for ticket in state %s", t.Status)
	}
	t.Status = StatusPaid
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel voids a ticket that has not been used yet.
func (t *Ticket) Cancel() error {
	if t.Status != StatusPendingPayment && t.Status != StatusPaid {
		return faults.New(faults.KindInvalidState, "cannot cancel ticket in state %s", t.Status)
	}
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkUsed consumes a paid ticket at the venue gate.
func (t *Ticket) MarkUsed() error {
	if t.Status != StatusPaid {
		return faults.New(faults.KindInvalidState, "cannot mark ticket in state %s as used", t.Status)
	}
	t.Status = StatusUsed
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsPendingPayment reports whether payment is still outstanding
func (t *Ticket) IsPendingPayment() bool {
	return t.Status == StatusPendingPayment
}

// IsCancelled reports whether the ticket has been voided
func (t *Ticket) IsCancelled() bool {
	return t.Status == StatusCancelled
}
