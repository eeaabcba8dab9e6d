package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"
)

func newTestClient(cfg Config) *Client {
	return NewClient("events", cfg, logger.NewNop())
}

func TestClientReturnsSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second})

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, StateClosed, client.Breaker().State())
}

func TestClientRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 2})

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 2})

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	// A 404 reaches the caller for classification; it is not a failure.
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateClosed, client.Breaker().State())
}

func TestClientExhaustedRetriesSurfaceAsUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 2})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindServiceUnavailable))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientOpenBreakerFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 0, FailureThreshold: 2, OpenDuration: time.Minute})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	require.Equal(t, StateOpen, client.Breaker().State())

	before := calls.Load()
	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	// Denied without touching the network.
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindServiceUnavailable))
	assert.Equal(t, before, calls.Load())
}

func TestClientHalfOpenProbeRecovers(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 0, FailureThreshold: 1, OpenDuration: 10 * time.Millisecond})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	require.Equal(t, StateOpen, client.Breaker().State())

	healthy.Store(true)
	time.Sleep(20 * time.Millisecond)

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StateClosed, client.Breaker().State())
}

func TestClientCancellationPropagatesContextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: 5 * time.Second, MaxRetries: 2, FailureThreshold: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Do(ctx, Request{Method: http.MethodGet, URL: srv.URL})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// Caller cancellation is not held against the dependency.
	assert.Equal(t, StateClosed, client.Breaker().State())
}

func TestClientCancelledProbeDoesNotWedgeBreaker(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 0, FailureThreshold: 1, OpenDuration: 10 * time.Millisecond})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	require.Equal(t, StateOpen, client.Breaker().State())

	// After the cooldown a caller claims the probe slot but is already
	// cancelled, so no outcome is ever recorded for that call.
	time.Sleep(20 * time.Millisecond)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Do(cancelled, Request{Method: http.MethodGet, URL: srv.URL})
	require.ErrorIs(t, err, context.Canceled)

	// The slot was released: once the dependency recovers, the next
	// caller gets the probe and closes the breaker.
	healthy.Store(true)
	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StateClosed, client.Breaker().State())
}

func TestClientEncodingErrorLeavesBreakerStateAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 0, FailureThreshold: 1, OpenDuration: 10 * time.Millisecond})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	require.Equal(t, StateOpen, client.Breaker().State())

	time.Sleep(20 * time.Millisecond)

	// A channel cannot be JSON-encoded; the call fails locally before any
	// network attempt. A local error must not close a half-open breaker.
	_, err = client.Do(context.Background(), Request{Method: http.MethodPost, URL: srv.URL, Body: make(chan int)})
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindValidation))
	assert.Equal(t, StateHalfOpen, client.Breaker().State())

	// The probe slot is free for the next caller.
	require.NoError(t, client.Breaker().Allow())
}

func TestClientTransportErrorRetriedAndCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(Config{CallTimeout: time.Second, MaxRetries: 1, FailureThreshold: 2, OpenDuration: time.Minute})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindServiceUnavailable))
	// Two transport failures reach the threshold and open the breaker.
	assert.Equal(t, StateOpen, client.Breaker().State())
}
