package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"
	"ticketly/pkg/resilience"
)

func newEventTestClient(t *testing.T, handler http.HandlerFunc) (*EventClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rc := resilience.NewClient("events", resilience.Config{CallTimeout: time.Second}, logger.NewNop())
	return NewEventClient(srv.URL, rc, nil, time.Minute, logger.NewNop()), srv
}

func TestEventExistsAndAvailable(t *testing.T) {
	eventID := uuid.New()

	tests := []struct {
		name      string
		status    int
		body      string
		available bool
	}{
		{"available event", http.StatusOK, `{"id":"` + eventID.String() + `","is_available":true,"base_price":"50.00"}`, true},
		{"available despite unparseable body", http.StatusOK, `not-json`, true},
		{"unknown event", http.StatusNotFound, ``, false},
		{"rejected lookup", http.StatusForbidden, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newEventTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/events/"+eventID.String(), r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			available, err := client.EventExistsAndAvailable(context.Background(), eventID)

			require.NoError(t, err)
			assert.Equal(t, tt.available, available)
		})
	}
}

func TestEventExistsAndAvailableRejectsNilID(t *testing.T) {
	client, _ := newEventTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected")
	})

	_, err := client.EventExistsAndAvailable(context.Background(), uuid.Nil)

	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindValidation))
}

func TestEventExistsAndAvailableDependencyDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	rc := resilience.NewClient("events", resilience.Config{CallTimeout: time.Second}, logger.NewNop())
	client := NewEventClient(srv.URL, rc, nil, time.Minute, logger.NewNop())

	_, err := client.EventExistsAndAvailable(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindServiceUnavailable))
}

func TestGetEventInfo(t *testing.T) {
	eventID := uuid.New()
	client, _ := newEventTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"` + eventID.String() + `","title":"Concert","is_available":true,"base_price":"75.50"}`))
	})

	info, err := client.GetEventInfo(context.Background(), eventID)

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, eventID, info.ID)
	assert.Equal(t, "Concert", info.Title)
	assert.True(t, info.BasePrice.Equal(mustDecimal(t, "75.50")))
}

func TestGetEventInfoNotFoundYieldsNil(t *testing.T) {
	client, _ := newEventTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	info, err := client.GetEventInfo(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestGetEventInfoUnparseableBodyYieldsNil(t *testing.T) {
	client, _ := newEventTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`garbage`))
	})

	info, err := client.GetEventInfo(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestGetEventInfoUsesCachedSnapshot(t *testing.T) {
	eventID := uuid.New()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"` + eventID.String() + `","is_available":true,"base_price":"10.00"}`))
	}))
	t.Cleanup(srv.Close)

	rc := resilience.NewClient("events", resilience.Config{CallTimeout: time.Second}, logger.NewNop())
	client := NewEventClient(srv.URL, rc, newMemoryCache(), time.Minute, logger.NewNop())

	// First verification writes the snapshot.
	available, err := client.EventExistsAndAvailable(context.Background(), eventID)
	require.NoError(t, err)
	require.True(t, available)

	// Price resolution is served from the cache.
	info, err := client.GetEventInfo(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, int32(1), calls.Load())
}
