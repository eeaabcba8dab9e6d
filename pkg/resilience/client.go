package resilience

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/logger"
)

// Config holds the behaviour knobs for one resilient client.
type Config struct {
	// CallTimeout bounds a single network attempt. It is independent of,
	// and normally shorter than, the caller-supplied context deadline.
	CallTimeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	// Only network errors, timeouts and 5xx responses are retried.
	MaxRetries int

	// RetryBackoff is the pause between attempts.
	RetryBackoff time.Duration

	// FailureThreshold and OpenDuration configure the circuit breaker.
	FailureThreshold int
	OpenDuration     time.Duration
}

// Request describes one HTTP call to a dependency.
type Request struct {
	Method string
	URL    string
	Body   interface{} // JSON-encoded when non-nil
}

// Response is the terminal HTTP outcome of a call. Any status code that
// reaches the caller (including 4xx) means the dependency answered; the
// caller classifies it. Transport failures never produce a Response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client wraps an HTTP client with per-call timeout, retry and a circuit
// breaker for one external dependency.
type Client struct {
	name    string
	hc      *http.Client
	breaker *Breaker
	retries int
	backoff time.Duration
	log     *logger.Logger
}

// NewClient creates a resilient client for one named dependency.
func NewClient(name string, cfg Config, log *logger.Logger) *Client {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		name:    name,
		hc:      &http.Client{Timeout: timeout},
		breaker: NewBreaker(name, cfg.FailureThreshold, cfg.OpenDuration),
		retries: cfg.MaxRetries,
		backoff: cfg.RetryBackoff,
		log:     log.WithComponent("resilient_client").WithFields(map[string]interface{}{"dependency": name}),
	}
}

// Breaker exposes the breaker for observability.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Do executes the request. While the breaker is open it fails immediately
// with a ServiceUnavailable fault and no network attempt. Transient
// outcomes (network error, timeout, 5xx) are retried up to MaxRetries
// times; exhaustion surfaces as ServiceUnavailable. Caller cancellation
// aborts the sequence and propagates as a context error, not a fault;
// a probe slot claimed from a half-open breaker is released so later
// callers can still probe the dependency.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := c.breaker.Allow(); err != nil {
		c.log.ErrorContext(ctx, "call denied, circuit open", "method", req.Method, "url", req.URL)
		return nil, faults.Wrap(faults.KindServiceUnavailable, err, "%s is unavailable", c.name)
	}

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			// Local error, not a dependency outcome: the state machine
			// must not move, only the claimed probe slot is returned.
			c.breaker.ReleaseProbe()
			return nil, faults.Wrap(faults.KindValidation, err, "encode request body")
		}
		body = encoded
	}

	var lastErr error
	attempts := c.retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			c.breaker.ReleaseProbe()
			return nil, err
		}
		if attempt > 1 && c.backoff > 0 {
			select {
			case <-ctx.Done():
				c.breaker.ReleaseProbe()
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		resp, err := c.attempt(ctx, req.Method, req.URL, body)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// Caller gave up; not a dependency failure.
				c.breaker.ReleaseProbe()
				return nil, ctxErr
			}
			c.breaker.RecordFailure()
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			c.breaker.RecordFailure()
			lastErr = fmt.Errorf("%s responded %d", c.name, resp.StatusCode)
			continue
		}

		c.breaker.RecordSuccess()
		c.log.DebugContext(ctx, "call succeeded",
			"method", req.Method, "url", req.URL, "status", resp.StatusCode, "attempt", attempt)
		return resp, nil
	}

	c.log.ErrorContext(ctx, "call failed after retries",
		"method", req.Method, "url", req.URL, "attempts", attempts, "error", lastErr.Error())
	return nil, faults.Wrap(faults.KindServiceUnavailable, lastErr, "%s is unavailable", c.name)
}

func (c *Client) attempt(ctx context.Context, method, url string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: payload}, nil
}
