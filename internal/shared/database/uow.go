package database

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"

	"gorm.io/gorm"
)

// UnitOfWork scopes the writes of one logical request to a single
// explicit transaction. It is not shared between requests: every
// orchestration run gets its own instance from a factory and holds at
// most one active transaction at any time.
//
// Every exit path of CommitTransaction clears the active-transaction
// flag, and Close is the backstop against a transaction leaked by a
// fault that propagated past the caller.
type UnitOfWork struct {
	db  *gorm.DB
	log *logger.Logger

	mu      sync.Mutex
	tx      *gorm.DB
	pending []interface{}
}

// NewUnitOfWork creates a unit of work bound to the given database handle.
func NewUnitOfWork(db *gorm.DB, log *logger.Logger) *UnitOfWork {
	return &UnitOfWork{
		db:  db,
		log: log.WithComponent("unit_of_work"),
	}
}

// BeginTransaction starts a new transaction. Starting one while another
// is active is a programmer error and fails loudly; nesting is never
// silently allowed.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx != nil {
		return errors.New("transaction already active")
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return faults.Wrap(faults.KindInternal, tx.Error, "begin transaction")
	}
	u.tx = tx
	return nil
}

// Register queues an entity for insertion on the next SaveChanges.
func (u *UnitOfWork) Register(entity interface{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append(u.pending, entity)
}

// SaveChanges flushes the pending writes inside the active transaction
// (or directly against the database when none is active) and returns the
// number of affected rows. A unique-constraint violation surfaces as a
// PersistenceConflict fault, untouched and unretried.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	handle := u.tx
	if handle == nil {
		handle = u.db.WithContext(ctx)
	}

	var affected int64
	for _, entity := range u.pending {
		result := handle.Create(entity)
		if result.Error != nil {
			return affected, translateWriteError(result.Error)
		}
		affected += result.RowsAffected
	}
	u.pending = nil
	return affected, nil
}

// CommitTransaction commits the active transaction. On any failure it
// rolls back before returning the original error. The transaction handle
// is released on every path, success or not.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil {
		return errors.New("no active transaction")
	}

	tx := u.tx
	u.tx = nil
	u.pending = nil

	if err := ctx.Err(); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return faults.Wrap(faults.KindInternal, err, "commit transaction")
	}
	return nil
}

// RollbackTransaction rolls back the active transaction. Rolling back
// when none is active is an idempotent no-op that only logs a warning.
func (u *UnitOfWork) RollbackTransaction() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil {
		u.log.Warn("rollback requested with no active transaction")
		return nil
	}

	tx := u.tx
	u.tx = nil
	u.pending = nil

	if err := tx.Rollback().Error; err != nil {
		return faults.Wrap(faults.KindInternal, err, "rollback transaction")
	}
	return nil
}

// HasActiveTransaction reports whether a transaction is currently open.
func (u *UnitOfWork) HasActiveTransaction() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tx != nil
}

// Close releases the unit of work. A transaction still active at this
// point was leaked by an unhandled fault; it is rolled back and reported.
func (u *UnitOfWork) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil {
		return nil
	}

	u.log.Warn("transaction left active, rolling back")
	tx := u.tx
	u.tx = nil
	u.pending = nil

	if err := tx.Rollback().Error; err != nil {
		return faults.Wrap(faults.KindInternal, err, "rollback leaked transaction")
	}
	return nil
}

// translateWriteError maps driver-level errors onto the fault taxonomy.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value") {
		return faults.Wrap(faults.KindPersistenceConflict, err, "duplicate record")
	}
	return faults.Wrap(faults.KindInternal, err, "save changes")
}
