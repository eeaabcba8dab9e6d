package tickets

import (
	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes registers the ticket issuance and lifecycle routes.
// Authentication sits in front of this service; these routes trust the
// identifiers carried in the request.
func SetupTicketRoutes(router *gin.RouterGroup, controller Controller) {
	tickets := router.Group("/tickets")
	{
		tickets.POST("", controller.CreateTicket)                       // POST /api/v1/tickets - Issue a ticket
		tickets.GET("/:ticketId", controller.GetTicket)                 // GET /api/v1/tickets/:ticketId - Ticket details
		tickets.POST("/:ticketId/confirm-payment", controller.ConfirmPayment) // POST /api/v1/tickets/:ticketId/confirm-payment
		tickets.POST("/:ticketId/cancel", controller.CancelTicket)      // POST /api/v1/tickets/:ticketId/cancel
		tickets.POST("/:ticketId/use", controller.MarkTicketUsed)       // POST /api/v1/tickets/:ticketId/use
	}

	users := router.Group("/users")
	{
		users.GET("/:userId/tickets", controller.GetUserTickets) // GET /api/v1/users/:userId/tickets - User ticket listing
	}
}
