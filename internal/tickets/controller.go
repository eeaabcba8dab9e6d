package tickets

import (
	"context"
	"errors"
	"net/http"

	"ticketly/internal/shared/faults"
	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller interface {
	CreateTicket(c *gin.Context)
	GetTicket(c *gin.Context)
	GetUserTickets(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	CancelTicket(c *gin.Context)
	MarkTicketUsed(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, bindingErrors(err))
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid identifier format", nil, err.Error())
		return
	}

	ticket, err := ctrl.service.CreateTicket(c.Request.Context(), cmd)
	if err != nil {
		respondFault(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Ticket created successfully", ticket.ToResponse(), nil)
}

func (ctrl *controller) GetTicket(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "ticketId")
	if !ok {
		return
	}

	ticket, err := ctrl.service.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		respondFault(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ticket.ToResponse(), nil)
}

func (ctrl *controller) GetUserTickets(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var query TicketListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, bindingErrors(err))
		return
	}

	list, err := ctrl.service.GetUserTickets(c.Request.Context(), userID, query.Limit, query.Offset)
	if err != nil {
		respondFault(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tickets retrieved successfully", ToResponseList(list), nil)
}

func (ctrl *controller) ConfirmPayment(c *gin.Context) {
	ctrl.applyTransition(c, ctrl.service.ConfirmPayment, "Payment confirmed")
}

func (ctrl *controller) CancelTicket(c *gin.Context) {
	ctrl.applyTransition(c, ctrl.service.CancelTicket, "Ticket cancelled")
}

func (ctrl *controller) MarkTicketUsed(c *gin.Context) {
	ctrl.applyTransition(c, ctrl.service.MarkTicketUsed, "Ticket marked as used")
}

func (ctrl *controller) applyTransition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*Ticket, error), message string) {
	ticketID, ok := parseIDParam(c, "ticketId")
	if !ok {
		return
	}

	ticket, err := op(c.Request.Context(), ticketID)
	if err != nil {
		respondFault(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, message, ticket.ToResponse(), nil)
}

// parseIDParam parses a UUID path parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// respondFault translates a fault from the service layer into the
// problem response: 404/409 for business rejections, 400 for validation,
// 503 for dependency outages, 500 otherwise.
func respondFault(c *gin.Context, err error) {
	if errors.Is(err, ErrTicketNotFound) {
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		return
	}
	response.RespondJSON(c, "error", faults.HTTPStatus(err), err.Error(), nil, nil)
}

// bindingErrors extracts per-field details from validator errors.
func bindingErrors(err error) interface{} {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return details
	}
	return err.Error()
}
