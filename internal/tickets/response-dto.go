package tickets

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketResponse represents a ticket in API responses
type TicketResponse struct {
	ID           string          `json:"id"`
	EventID      string          `json:"event_id"`
	UserID       string          `json:"user_id"`
	SeatID       *string         `json:"seat_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	QRCode       string          `json:"qr_code"`
	Status       Status          `json:"status"`
	PurchaseDate time.Time       `json:"purchase_date"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToResponse converts a Ticket to its API representation
func (t *Ticket) ToResponse() TicketResponse {
	resp := TicketResponse{
		ID:           t.ID.String(),
		EventID:      t.EventID.String(),
		UserID:       t.UserID.String(),
		Amount:       t.Amount,
		QRCode:       t.QRCode,
		Status:       t.Status,
		PurchaseDate: t.PurchaseDate,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.SeatID != nil {
		seatID := t.SeatID.String()
		resp.SeatID = &seatID
	}
	return resp
}

// ToResponseList converts a slice of tickets
func ToResponseList(list []Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToResponse())
	}
	return out
}
