package availability

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventInfo is a read-only snapshot served by the event service. It is
// consulted transiently during issuance and never persisted.
type EventInfo struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Date        time.Time       `json:"date"`
	IsAvailable bool            `json:"is_available"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// SeatInfo is a read-only snapshot served by the seat service.
type SeatInfo struct {
	ID              uuid.UUID       `json:"id"`
	Section         string          `json:"section"`
	Row             string          `json:"row"`
	Number          int             `json:"number"`
	IsAvailable     bool            `json:"is_available"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
}

// reservationRequest is the wire format of the seat reservation endpoint.
type reservationRequest struct {
	ReservationID   uuid.UUID `json:"reservationId"`
	UserID          uuid.UUID `json:"userId"`
	DurationMinutes int       `json:"durationMinutes"`
}
