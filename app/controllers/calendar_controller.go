package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
)

type CalendarController struct {
	tokens TokenSource
	api    RemoteAPI
	syncer Syncer
	jobs   JobQueue
}

// NewCalendarController wires the calendar handlers. jobs may be nil, in
// which case asynchronous syncs are rejected.
func NewCalendarController(tokens TokenSource, api RemoteAPI, syncer Syncer, jobs JobQueue) *CalendarController {
	return &CalendarController{tokens: tokens, api: api, syncer: syncer, jobs: jobs}
}

// HandleListCalendars returns id and name of every active calendar of a location.
func (cc *CalendarController) HandleListCalendars(c *fiber.Ctx) error {
	locationID := c.Query("locationId")
	if locationID == "" {
		return respondBadRequest(c, "Missing locationId", nil)
	}

	token, err := cc.tokens.Token(c.UserContext(), locationID, models.AccountKindLocation)
	if err != nil {
		return respondError(c, err)
	}

	calendars, err := cc.api.ActiveCalendars(c.UserContext(), token, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", calendars)
}

func (cc *CalendarController) HandleFreeSlots(c *fiber.Ctx) error {
	calendarID := c.Params("calendarId")
	locationID := c.Query("locationId")
	if calendarID == "" || locationID == "" {
		return respondBadRequest(c, "Missing calendarId or locationId", nil)
	}

	var q ghl.FreeSlotsQuery
	if err := c.QueryParser(&q); err != nil {
		return respondBadRequest(c, "Invalid query", err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return respondBadRequest(c, "Invalid query", validationDetails(err))
	}

	token, err := cc.tokens.Token(c.UserContext(), locationID, models.AccountKindLocation)
	if err != nil {
		return respondError(c, err)
	}

	slots, err := cc.api.FreeSlots(c.UserContext(), token, calendarID, q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", slots)
}

// HandleSyncCalendar mirrors calendar metadata, or enqueues the sync when ?async=1.
func (cc *CalendarController) HandleSyncCalendar(c *fiber.Ctx) error {
	calendarID := c.Params("calendarId")
	locationID := c.Query("locationId")
	if calendarID == "" || locationID == "" {
		return respondBadRequest(c, "Missing calendarId or locationId", nil)
	}

	if c.QueryBool("async") {
		if cc.jobs == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(Response{Error: "JobQueueUnavailable", Message: "Job queue is not running"})
		}
		job, err := cc.jobs.EnqueueCalendarSync(c.UserContext(), calendarID, locationID)
		if err != nil {
			return respondError(c, err)
		}
		return respondOK(c, fiber.StatusAccepted, "Calendar sync queued", job)
	}

	result, err := cc.syncer.SyncCalendar(c.UserContext(), calendarID, locationID)
	if err != nil {
		return respondError(c, err)
	}

	message := "Calendar synced"
	if n := len(result.Failures); n > 0 {
		message = fmt.Sprintf("Calendar synced, %d records skipped", n)
	}
	return respondOK(c, fiber.StatusOK, message, result)
}

// HandleSyncBookedSlots mirrors the next year of booked events, or enqueues the sync when ?async=1.
func (cc *CalendarController) HandleSyncBookedSlots(c *fiber.Ctx) error {
	calendarID := c.Params("calendarId")
	locationID := c.Query("locationId")
	if calendarID == "" || locationID == "" {
		return respondBadRequest(c, "Missing calendarId or locationId", nil)
	}

	if c.QueryBool("async") {
		if cc.jobs == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(Response{Error: "JobQueueUnavailable", Message: "Job queue is not running"})
		}
		job, err := cc.jobs.EnqueueBookedSlotsSync(c.UserContext(), calendarID, locationID)
		if err != nil {
			return respondError(c, err)
		}
		return respondOK(c, fiber.StatusAccepted, "Booked slot sync queued", job)
	}

	result, err := cc.syncer.SyncBookedSlots(c.UserContext(), calendarID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	if !result.Success {
		return c.Status(fiber.StatusOK).JSON(Response{Message: result.Message, Data: result})
	}
	return respondOK(c, fiber.StatusOK, fmt.Sprintf("%d of %d events saved", result.Persisted, len(result.Events)), result)
}
