package faults

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindTags(t *testing.T) {
	assert.Equal(t, "validation_failed", KindValidation.String())
	assert.Equal(t, "event_not_available", KindEventNotAvailable.String())
	assert.Equal(t, "seat_not_available", KindSeatNotAvailable.String())
	assert.Equal(t, "service_unavailable", KindServiceUnavailable.String())
	assert.Equal(t, "persistence_conflict", KindPersistenceConflict.String())
	assert.Equal(t, "publish_failed", KindPublishFailure.String())
	assert.Equal(t, "invalid_state", KindInvalidState.String())
	assert.Equal(t, "error", KindInternal.String())
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	fault := Wrap(KindServiceUnavailable, cause, "events is unavailable")
	wrapped := fmt.Errorf("create ticket: %w", fault)

	assert.Equal(t, KindServiceUnavailable, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindServiceUnavailable))
	assert.False(t, Is(wrapped, KindValidation))
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOfUnclassifiedError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad input")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(KindEventNotAvailable, "gone")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(KindSeatNotAvailable, "held")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(KindPersistenceConflict, "dup")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(KindInvalidState, "cannot cancel")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(New(KindServiceUnavailable, "down")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
