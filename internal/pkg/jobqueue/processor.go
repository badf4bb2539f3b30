package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SlotSync/internal/pkg/calendarsync"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

// Syncer runs the synchronizations a job describes.
type Syncer interface {
	SyncCalendar(ctx context.Context, calendarID, accountID string) (*calendarsync.CalendarSyncResult, error)
	SyncBookedSlots(ctx context.Context, calendarID, accountID string) (*calendarsync.BookingSyncResult, error)
}

// errPermanent marks a job failure that retrying cannot fix.
var errPermanent = errors.New("permanent job failure")

// EnqueueCalendarSync enqueues a calendar metadata sync
func (q *Queue) EnqueueCalendarSync(ctx context.Context, calendarID, locationID string) (*Job, error) {
	if calendarID == "" || locationID == "" {
		return nil, fmt.Errorf("calendar sync job: %w", syncerr.ErrMissingArgument)
	}
	payload := CalendarSyncJobPayload{CalendarID: calendarID, LocationID: locationID}
	return q.EnqueueJob(ctx, JobTypeCalendarSync, payload.ToMap())
}

// EnqueueBookedSlotsSync enqueues a booked slot sync
func (q *Queue) EnqueueBookedSlotsSync(ctx context.Context, calendarID, locationID string) (*Job, error) {
	if calendarID == "" || locationID == "" {
		return nil, fmt.Errorf("booked slots sync job: %w", syncerr.ErrMissingArgument)
	}
	payload := BookedSlotsSyncJobPayload{CalendarID: calendarID, LocationID: locationID}
	return q.EnqueueJob(ctx, JobTypeBookedSlotsSync, payload.ToMap())
}

func (q *Queue) processCalendarSyncJob(ctx context.Context, job *Job) error {
	payload, err := CalendarSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("%w: invalid payload: %w", errPermanent, err)
	}

	result, err := q.syncer.SyncCalendar(ctx, payload.CalendarID, payload.LocationID)
	if err != nil {
		return classify(err)
	}
	if len(result.Failures) > 0 {
		log.Warnf("[JobQueue] Job %s: calendar %s synced with %d skipped records", job.ID, payload.CalendarID, len(result.Failures))
	}
	job.Result = encodeResult(job.ID, result)
	return nil
}

func (q *Queue) processBookedSlotsSyncJob(ctx context.Context, job *Job) error {
	payload, err := BookedSlotsSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("%w: invalid payload: %w", errPermanent, err)
	}

	result, err := q.syncer.SyncBookedSlots(ctx, payload.CalendarID, payload.LocationID)
	if err != nil {
		return classify(err)
	}
	if !result.Success {
		log.Infof("[JobQueue] Job %s: calendar %s: %s", job.ID, payload.CalendarID, result.Message)
	}
	job.Result = encodeResult(job.ID, result)
	return nil
}

// classify marks errors that do not heal with time as permanent.
func classify(err error) error {
	switch {
	case errors.Is(err, syncerr.ErrMissingArgument),
		errors.Is(err, syncerr.ErrCredentialNotFound),
		errors.Is(err, syncerr.ErrRemoteCalendarNotFound):
		return fmt.Errorf("%w: %w", errPermanent, err)
	default:
		return err
	}
}

func encodeResult(jobID string, v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal result of job %s: %v", jobID, err)
		return nil
	}
	return raw
}
