package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTicketNotFound is returned when a lookup finds no matching ticket.
var ErrTicketNotFound = errors.New("ticket not found")

// UnitOfWork is the transactional boundary the repository writes through.
// It is satisfied by the shared database unit of work; declaring it here
// keeps the domain package free of persistence-layer imports and lets
// tests substitute their own.
type UnitOfWork interface {
	BeginTransaction(ctx context.Context) error
	Register(entity interface{})
	SaveChanges(ctx context.Context) (int64, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction() error
	HasActiveTransaction() bool
	Close() error
}

// Repository defines the contract for ticket persistence
type Repository interface {
	// Save persists a new ticket through the given unit of work. A
	// duplicate qr_code surfaces as a PersistenceConflict fault.
	Save(ctx context.Context, uow UnitOfWork, ticket *Ticket) error

	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Ticket, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Ticket, error)

	// Update persists a state transition of an existing ticket.
	Update(ctx context.Context, ticket *Ticket) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new ticket repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, uow UnitOfWork, ticket *Ticket) error {
	uow.Register(ticket)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket %s: %w", id, ErrTicketNotFound)
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 10
	}

	var list []Ticket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error

	return list, err
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 10
	}

	var list []Ticket
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("purchase_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error

	return list, err
}

func (r *repository) Update(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]interface{}{
			"status":     ticket.Status,
			"updated_at": ticket.UpdatedAt,
		}).Error
}
