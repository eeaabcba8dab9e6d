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

// SeatClient verifies seat availability and places temporary reservations
// against the seat service.
//
// The availability endpoint and the reservation endpoint disagree on what
// a missing or held seat looks like, and that asymmetry is intentional:
// a 404 on the availability check means the seat was never there (a plain
// false), while a 409 on the reservation means someone actively holds it
// (a SeatNotAvailable fault).
type SeatClient struct {
	client      *resilience.Client
	baseURL     string
	snapshots   cache.Service
	snapshotTTL time.Duration
	log         *logger.Logger
}

// NewSeatClient creates a seat verifier. snapshots may be nil.
func NewSeatClient(baseURL string, client *resilience.Client, snapshots cache.Service, snapshotTTL time.Duration, log *logger.Logger) *SeatClient {
	return &SeatClient{
		client:      client,
		baseURL:     baseURL,
		snapshots:   snapshots,
		snapshotTTL: snapshotTTL,
		log:         log.WithComponent("seat_verifier"),
	}
}

// SeatAvailable reports whether the seat can be sold. A nil seatID is the
// general-admission path: it returns true immediately with no network
// call. 200 means available, 404 means unknown seat (treated as
// unavailable), any other 4xx means unavailable.
func (c *SeatClient) SeatAvailable(ctx context.Context, eventID uuid.UUID, seatID *uuid.UUID) (bool, error) {
	if seatID == nil {
		return true, nil
	}
	if eventID == uuid.Nil {
		return false, faults.Validation("event id is required")
	}
	if *seatID == uuid.Nil {
		return false, faults.Validation("seat id is required")
	}

	resp, err := c.client.Do(ctx, resilience.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/events/%s/seats/%s", c.baseURL, eventID, *seatID),
	})
	if err != nil {
		return false, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		c.cacheSnapshot(ctx, eventID, *seatID, resp.Body)
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		c.log.DebugContext(ctx, "seat not found", "event_id", eventID.String(), "seat_id", seatID.String())
		return false, nil
	default:
		c.log.DebugContext(ctx, "seat not available", "event_id", eventID.String(), "seat_id", seatID.String(), "status", resp.StatusCode)
		return false, nil
	}
}

// ReserveSeatTemporarily places a short-lived reservation on the seat so
// it cannot be sold twice while issuance completes. A 409 answer means an
// active conflicting reservation and raises SeatNotAvailable; any other
// rejection by the service is surfaced the same way.
func (c *SeatClient) ReserveSeatTemporarily(ctx context.Context, eventID, seatID, userID, reservationID uuid.UUID, duration time.Duration) error {
	if eventID == uuid.Nil || seatID == uuid.Nil || userID == uuid.Nil || reservationID == uuid.Nil {
		return faults.Validation("event, seat, user and reservation ids are required")
	}
	if duration <= 0 {
		return faults.Validation("reservation duration must be positive")
	}

	resp, err := c.client.Do(ctx, resilience.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/events/%s/seats/%s/reservations", c.baseURL, eventID, seatID),
		Body: reservationRequest{
			ReservationID:   reservationID,
			UserID:          userID,
			DurationMinutes: int(duration / time.Minute),
		},
	})
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		c.log.DebugContext(ctx, "seat reserved",
			"event_id", eventID.String(), "seat_id", seatID.String(), "reservation_id", reservationID.String())
		return nil
	case http.StatusConflict:
		return faults.New(faults.KindSeatNotAvailable, "seat %s is held by a conflicting reservation", seatID)
	default:
		return faults.New(faults.KindSeatNotAvailable, "seat %s could not be reserved (status %d)", seatID, resp.StatusCode)
	}
}

// GetSeatInfo returns the seat snapshot used for price resolution. A 404
// maps to nil, not a fault.
func (c *SeatClient) GetSeatInfo(ctx context.Context, eventID, seatID uuid.UUID) (*SeatInfo, error) {
	if eventID == uuid.Nil || seatID == uuid.Nil {
		return nil, faults.Validation("event and seat ids are required")
	}

	if c.snapshots != nil {
		var cached SeatInfo
		if err := c.snapshots.Get(ctx, seatSnapshotKey(eventID, seatID), &cached); err == nil {
			return &cached, nil
		}
	}

	resp, err := c.client.Do(ctx, resilience.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/events/%s/seats/%s", c.baseURL, eventID, seatID),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var info SeatInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, nil
	}
	c.storeSnapshot(ctx, eventID, seatID, &info)
	return &info, nil
}

func (c *SeatClient) cacheSnapshot(ctx context.Context, eventID, seatID uuid.UUID, body []byte) {
	if c.snapshots == nil || len(body) == 0 {
		return
	}
	var info SeatInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return
	}
	c.storeSnapshot(ctx, eventID, seatID, &info)
}

func (c *SeatClient) storeSnapshot(ctx context.Context, eventID, seatID uuid.UUID, info *SeatInfo) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Set(ctx, seatSnapshotKey(eventID, seatID), info, c.snapshotTTL); err != nil {
		c.log.WarnContext(ctx, "failed to cache seat snapshot", "seat_id", seatID.String(), "error", err.Error())
	}
}

func seatSnapshotKey(eventID, seatID uuid.UUID) string {
	return "snapshot:seat:" + eventID.String() + ":" + seatID.String()
}
