package tickets

import (
	"github.com/google/uuid"
)

// CreateTicketRequest represents a ticket creation request
type CreateTicketRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
	UserID  string `json:"user_id" binding:"required,uuid"`
	SeatID  string `json:"seat_id" binding:"omitempty,uuid"`
}

// ToCommand converts the request into an issuance command.
func (r *CreateTicketRequest) ToCommand() (CreateTicketCommand, error) {
	eventID, err := uuid.Parse(r.EventID)
	if err != nil {
		return CreateTicketCommand{}, err
	}
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return CreateTicketCommand{}, err
	}

	cmd := CreateTicketCommand{
		EventID: eventID,
		UserID:  userID,
	}
	if r.SeatID != "" {
		seatID, err := uuid.Parse(r.SeatID)
		if err != nil {
			return CreateTicketCommand{}, err
		}
		cmd.SeatID = &seatID
	}
	return cmd, nil
}

// TicketListQuery represents pagination parameters for ticket listings
type TicketListQuery struct {
	Limit  int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}
