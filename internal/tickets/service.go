package tickets

import (
	"context"
	"errors"
	"time"

	"ticketly/internal/availability"
	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventVerifier checks event availability (to avoid importing the
// transport layer; implemented by availability.EventClient)
type EventVerifier interface {
	EventExistsAndAvailable(ctx context.Context, eventID uuid.UUID) (bool, error)
	GetEventInfo(ctx context.Context, eventID uuid.UUID) (*availability.EventInfo, error)
}

// SeatVerifier checks and reserves seats (implemented by
// availability.SeatClient)
type SeatVerifier interface {
	SeatAvailable(ctx context.Context, eventID uuid.UUID, seatID *uuid.UUID) (bool, error)
	ReserveSeatTemporarily(ctx context.Context, eventID, seatID, userID, reservationID uuid.UUID, duration time.Duration) error
	GetSeatInfo(ctx context.Context, eventID, seatID uuid.UUID) (*availability.SeatInfo, error)
}

// UnitOfWorkFactory yields a fresh unit of work per orchestration run.
// Concurrent requests never share a transaction handle.
type UnitOfWorkFactory func() UnitOfWork

// CreateTicketCommand is the immutable input to ticket issuance.
type CreateTicketCommand struct {
	EventID uuid.UUID
	UserID  uuid.UUID
	SeatID  *uuid.UUID
}

// Service interface defines the contract for ticket business logic
type Service interface {
	CreateTicket(ctx context.Context, cmd CreateTicketCommand) (*Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Ticket, error)

	// Lifecycle transitions
	ConfirmPayment(ctx context.Context, id uuid.UUID) (*Ticket, error)
	CancelTicket(ctx context.Context, id uuid.UUID) (*Ticket, error)
	MarkTicketUsed(ctx context.Context, id uuid.UUID) (*Ticket, error)
}

// service implements the Service interface
type service struct {
	events         EventVerifier
	seats          SeatVerifier
	repo           Repository
	publisher      EventPublisher
	codes          CodeGenerator
	newUnitOfWork  UnitOfWorkFactory
	metrics        Metrics
	log            *logger.Logger
	reservationTTL time.Duration
}

// NewService creates a new ticket service instance
func NewService(
	events EventVerifier,
	seats SeatVerifier,
	repo Repository,
	publisher EventPublisher,
	codes CodeGenerator,
	newUnitOfWork UnitOfWorkFactory,
	metrics Metrics,
	log *logger.Logger,
	reservationTTL time.Duration,
) Service {
	return &service{
		events:         events,
		seats:          seats,
		repo:           repo,
		publisher:      publisher,
		codes:          codes,
		newUnitOfWork:  newUnitOfWork,
		metrics:        metrics,
		log:            log.WithComponent("ticket_service"),
		reservationTTL: reservationTTL,
	}
}

// CreateTicket runs the issuance flow as one sequential state machine.
// Any failing step short-circuits the remainder; the resulting fault
// propagates unchanged while the overall duration and outcome are
// recorded regardless of where the flow stopped.
func (s *service) CreateTicket(ctx context.Context, cmd CreateTicketCommand) (ticket *Ticket, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordCreation(outcomeOf(err), time.Since(start))
		if err != nil {
			s.log.ErrorContext(ctx, "ticket creation failed",
				"event_id", cmd.EventID.String(),
				"user_id", cmd.UserID.String(),
				"outcome", outcomeOf(err),
				"error", err.Error(),
			)
		}
	}()

	if cmd.EventID == uuid.Nil {
		return nil, faults.Validation("event id is required")
	}
	if cmd.UserID == uuid.Nil {
		return nil, faults.Validation("user id is required")
	}

	// Step 1: Validate the event
	eventOK, err := s.events.EventExistsAndAvailable(ctx, cmd.EventID)
	s.metrics.RecordDependencyCall("events", verificationOutcome(eventOK, err))
	if err != nil {
		return nil, err
	}
	if !eventOK {
		return nil, faults.New(faults.KindEventNotAvailable, "event %s is not available", cmd.EventID)
	}

	// Step 2: Validate and reserve the seat, when one was requested.
	// General-admission commands skip this entirely.
	if cmd.SeatID != nil {
		seatOK, err := s.seats.SeatAvailable(ctx, cmd.EventID, cmd.SeatID)
		s.metrics.RecordDependencyCall("seat", verificationOutcome(seatOK, err))
		if err != nil {
			return nil, err
		}
		if !seatOK {
			return nil, faults.New(faults.KindSeatNotAvailable, "seat %s is not available", cmd.SeatID)
		}

		reservationID := uuid.New()
		if err := s.seats.ReserveSeatTemporarily(ctx, cmd.EventID, *cmd.SeatID, cmd.UserID, reservationID, s.reservationTTL); err != nil {
			return nil, err
		}
	}

	// Step 3: Resolve the price from the snapshots fetched above
	amount, err := s.resolvePrice(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// Step 4: Generate the ticket code
	code, err := s.codes.Generate()
	if err != nil {
		return nil, err
	}

	// Step 5: Construct the ticket (validates amount > 0)
	ticket, err = NewTicket(cmd.EventID, cmd.UserID, cmd.SeatID, amount, code)
	if err != nil {
		return nil, err
	}

	// Step 6: Persist inside an explicit transaction
	uow := s.newUnitOfWork()
	defer uow.Close()

	if err := uow.BeginTransaction(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, uow, ticket); err != nil {
		uow.RollbackTransaction()
		return nil, err
	}
	if err := uow.CommitTransaction(ctx); err != nil {
		return nil, err
	}

	// Step 7: Announce the ticket. The row is already committed: a
	// publish failure leaves a ticket with no downstream event, which is
	// surfaced to the caller instead of being reconciled here.
	created := &TicketCreatedEvent{
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		UserID:    ticket.UserID,
		SeatID:    ticket.SeatID,
		Amount:    ticket.Amount,
		QRCode:    ticket.QRCode,
		CreatedAt: ticket.PurchaseDate,
	}
	if err := s.publisher.PublishTicketCreated(ctx, created); err != nil {
		s.log.ErrorContext(ctx, "ticket persisted but creation event was not published",
			"ticket_id", ticket.ID.String(),
			"event_id", ticket.EventID.String(),
			"error", err.Error(),
		)
		return nil, err
	}

	s.log.LogTicketCreated(ctx, ticket.ID.String(), ticket.EventID.String(), ticket.UserID.String())
	return ticket, nil
}

// resolvePrice computes the ticket amount from the event snapshot plus
// the seat surcharge. A missing snapshot leaves the amount at zero, which
// the ticket constructor rejects as a validation fault.
func (s *service) resolvePrice(ctx context.Context, cmd CreateTicketCommand) (decimal.Decimal, error) {
	amount := decimal.Zero

	eventInfo, err := s.events.GetEventInfo(ctx, cmd.EventID)
	if err != nil {
		return amount, err
	}
	if eventInfo != nil {
		amount = eventInfo.BasePrice
	}

	if cmd.SeatID != nil {
		seatInfo, err := s.seats.GetSeatInfo(ctx, cmd.EventID, *cmd.SeatID)
		if err != nil {
			return amount, err
		}
		if seatInfo != nil {
			amount = amount.Add(seatInfo.AdditionalPrice)
		}
	}

	return amount, nil
}

// GetTicket retrieves a ticket by ID
func (s *service) GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return s.repo.GetByID(ctx, id)
}

// GetUserTickets retrieves tickets for a specific user
func (s *service) GetUserTickets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Ticket, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

// ConfirmPayment marks a pending ticket as paid
func (s *service) ConfirmPayment(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return s.transition(ctx, id, (*Ticket).ConfirmPayment)
}

// CancelTicket voids a pending or paid ticket
func (s *service) CancelTicket(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return s.transition(ctx, id, (*Ticket).Cancel)
}

// MarkTicketUsed consumes a paid ticket
func (s *service) MarkTicketUsed(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return s.transition(ctx, id, (*Ticket).MarkUsed)
}

// transition loads a ticket, applies a state change and persists it.
func (s *service) transition(ctx context.Context, id uuid.UUID, apply func(*Ticket) error) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(ticket); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// verificationOutcome labels a dependency call for metrics.
func verificationOutcome(ok bool, err error) string {
	switch {
	case err != nil:
		return outcomeOf(err)
	case ok:
		return "available"
	default:
		return "not_available"
	}
}

// outcomeOf derives the overall outcome tag for a creation run.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return faults.KindOf(err).String()
	}
}
