package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a fault into one of the outcomes the ticket issuance
// flow can surface. The set is closed: callers switch on Kind instead of
// inspecting transport errors or raw HTTP status codes.
type Kind int

const (
	// KindInternal is the default for anything unclassified.
	KindInternal Kind = iota

	// KindValidation marks malformed input (empty id, non-positive
	// amount or duration). Never retried.
	KindValidation

	// KindEventNotAvailable marks a business rejection: the event does
	// not exist or is not open for sale.
	KindEventNotAvailable

	// KindSeatNotAvailable marks a business rejection: the seat is
	// unknown, unavailable, or held by a conflicting reservation.
	KindSeatNotAvailable

	// KindServiceUnavailable marks an external dependency failure after
	// retries are exhausted or while its circuit breaker is open. Safe
	// for the caller to retry later.
	KindServiceUnavailable

	// KindPersistenceConflict marks a storage constraint violation,
	// e.g. a duplicate QR code.
	KindPersistenceConflict

	// KindPublishFailure marks a failed TicketCreated publish after the
	// ticket row was already committed.
	KindPublishFailure

	// KindInvalidState marks an illegal ticket state transition.
	KindInvalidState
)

// String returns the snake_case tag used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindEventNotAvailable:
		return "event_not_available"
	case KindSeatNotAvailable:
		return "seat_not_available"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindPersistenceConflict:
		return "persistence_conflict"
	case KindPublishFailure:
		return "publish_failed"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "error"
	}
}

// Fault is a classified error. It wraps an optional cause so callers can
// still reach the underlying transport or driver error with errors.As.
type Fault struct {
	kind  Kind
	msg   string
	cause error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.msg, f.cause)
	}
	return f.msg
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// Kind returns the classification of the fault.
func (f *Fault) Kind() Kind {
	return f.kind
}

// New creates a fault of the given kind.
func New(kind Kind, format string, args ...interface{}) *Fault {
	return &Fault{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault of the given kind around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Fault {
	return &Fault{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Validation creates a validation fault.
func Validation(format string, args ...interface{}) *Fault {
	return New(KindValidation, format, args...)
}

// KindOf extracts the classification from an arbitrary error chain.
// Unclassified errors report KindInternal.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.kind == kind
}

// HTTPStatus maps a fault kind to the response status used by the HTTP
// surface: business rejections get 404/409, validation 400, dependency
// outages 503, everything else 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindEventNotAvailable:
		return http.StatusNotFound
	case KindSeatNotAvailable:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindPersistenceConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
