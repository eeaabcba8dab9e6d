package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ticketly/internal/shared/faults"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
	"ticketly/pkg/resilience"

	"github.com/google/uuid"
)

// EventClient verifies event availability against the event service. All
// transport and HTTP outcomes are translated into taxonomy faults or
// booleans at this boundary; callers never see raw status codes.
type EventClient struct {
	client      *resilience.Client
	baseURL     string
	snapshots   cache.Service
	snapshotTTL time.Duration
	log         *logger.Logger
}

// NewEventClient creates an event verifier. snapshots may be nil, in which
// case every lookup goes to the network.
func NewEventClient(baseURL string, client *resilience.Client, snapshots cache.Service, snapshotTTL time.Duration, log *logger.Logger) *EventClient {
	return &EventClient{
		client:      client,
		baseURL:     baseURL,
		snapshots:   snapshots,
		snapshotTTL: snapshotTTL,
		log:         log.WithComponent("event_verifier"),
	}
}

// EventExistsAndAvailable reports whether the event can be sold. A 200
// answer means available even when the body is not parseable; 404 and any
// other 4xx mean not available. Transport failures and retry exhaustion
// propagate as a ServiceUnavailable fault.
func (c *EventClient) EventExistsAndAvailable(ctx context.Context, eventID uuid.UUID) (bool, error) {
	if eventID == uuid.Nil {
		return false, faults.Validation("event id is required")
	}

	resp, err := c.client.Do(ctx, resilience.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/events/%s", c.baseURL, eventID),
	})
	if err != nil {
		return false, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		c.cacheSnapshot(ctx, eventID, resp.Body)
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		c.log.DebugContext(ctx, "event not found", "event_id", eventID.String())
		return false, nil
	default:
		// Remaining 4xx: the service answered and rejected the lookup.
		c.log.DebugContext(ctx, "event not available", "event_id", eventID.String(), "status", resp.StatusCode)
		return false, nil
	}
}

// GetEventInfo returns the event snapshot used for price resolution. The
// cached copy written during verification is preferred; a miss falls back
// to the network. A 404 or an unparseable 200 body yields nil, not a fault.
func (c *EventClient) GetEventInfo(ctx context.Context, eventID uuid.UUID) (*EventInfo, error) {
	if eventID == uuid.Nil {
		return nil, faults.Validation("event id is required")
	}

	if c.snapshots != nil {
		var cached EventInfo
		if err := c.snapshots.Get(ctx, eventSnapshotKey(eventID), &cached); err == nil {
			return &cached, nil
		}
	}

	resp, err := c.client.Do(ctx, resilience.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/events/%s", c.baseURL, eventID),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var info EventInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, nil
	}
	c.storeSnapshot(ctx, eventID, &info)
	return &info, nil
}

func (c *EventClient) cacheSnapshot(ctx context.Context, eventID uuid.UUID, body []byte) {
	if c.snapshots == nil || len(body) == 0 {
		return
	}
	var info EventInfo
	if err := json.Unmarshal(body, &info); err != nil {
		// A 200 without a parseable body still counts as available.
		return
	}
	c.storeSnapshot(ctx, eventID, &info)
}

func (c *EventClient) storeSnapshot(ctx context.Context, eventID uuid.UUID, info *EventInfo) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Set(ctx, eventSnapshotKey(eventID), info, c.snapshotTTL); err != nil {
		c.log.WarnContext(ctx, "failed to cache event snapshot", "event_id", eventID.String(), "error", err.Error())
	}
}

func eventSnapshotKey(eventID uuid.UUID) string {
	return "snapshot:event:" + eventID.String()
}
