package calendarsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/gofiber/fiber/v2/log"
)

const msgNoEvents = "no events"

type BookingSyncResult struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message,omitempty"`
	Events    []ghl.Event            `json:"events"`
	Persisted int                    `json:"persisted"`
	Failures  []*syncerr.RecordError `json:"failures,omitempty"`
}

// SyncBookedSlots mirrors the calendar's events from now until the same
// date one year ahead. Success means the remote fetch worked; Persisted and
// Failures tell how many rows made it to storage.
func (s *Service) SyncBookedSlots(ctx context.Context, calendarID, accountID string) (*BookingSyncResult, error) {
	if calendarID == "" || accountID == "" {
		return nil, fmt.Errorf("calendarId and locationId: %w", syncerr.ErrMissingArgument)
	}

	tok, err := s.token(ctx, accountID)
	if err != nil {
		return nil, err
	}

	start := s.now()
	events, err := s.api.ListEvents(ctx, tok, ghl.EventQuery{
		LocationID: accountID,
		CalendarID: calendarID,
		StartTime:  start,
		EndTime:    start.AddDate(1, 0, 0),
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		log.Infof("[BookingSync] calendar %s has no events", calendarID)
		return &BookingSyncResult{Success: false, Message: msgNoEvents, Events: []ghl.Event{}}, nil
	}

	var recs []*models.BookedSlotEvent
	var invalid []*syncerr.RecordError
	for _, ev := range events {
		if ev.ID == "" {
			invalid = append(invalid, &syncerr.RecordError{
				Entity: "event",
				Key:    models.ColBookedSlotEventID + "=",
				Err:    errors.New("missing event id"),
			})
			continue
		}
		recs = append(recs, normalizeEvent(ev))
	}
	for _, f := range invalid {
		log.Errorf("[BookingSync] skipping %v", f)
	}

	out := reconcile.ReconcileEach(ctx, s.stores.Events, "event", recs, reconcile.WithConcurrency(s.concurrency))

	result := &BookingSyncResult{
		Success:   true,
		Events:    events,
		Persisted: len(out.Succeeded()),
		Failures:  append(invalid, out.Failures...),
	}
	log.Infof("[BookingSync] calendar %s: %d events fetched, %d persisted, %d failures",
		calendarID, len(events), result.Persisted, len(result.Failures))
	return result, nil
}
