package controllers

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/calendarsync"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile/reconciletest"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/ManuelReschke/SlotSync/internal/pkg/token"
)

func newCalendarApp(cc *CalendarController) *fiber.App {
	app := fiber.New()
	app.Get("/calendars", cc.HandleListCalendars)
	app.Get("/calendars/:calendarId/free-slots", cc.HandleFreeSlots)
	app.Post("/calendars/:calendarId/sync", cc.HandleSyncCalendar)
	app.Post("/calendars/:calendarId/booked-slots/sync", cc.HandleSyncBookedSlots)
	return app
}

func TestHandleListCalendars(t *testing.T) {
	tokens := &stubTokens{token: "tok"}
	api := &stubAPI{calendars: []ghl.CalendarSummary{{ID: "cal_1", Name: "Consults"}}}
	app := newCalendarApp(NewCalendarController(tokens, api, &stubSyncer{}, nil))

	status, body := doRequest(t, app, httptest.NewRequest("GET", "/calendars?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
	assert.JSONEq(t, `[{"id":"cal_1","name":"Consults"}]`, string(body.Data))
	assert.Equal(t, "tok", api.lastToken)
	require.Len(t, tokens.calls, 1)
	assert.Equal(t, tokenCall{accountID: "loc_1", kind: models.AccountKindLocation}, tokens.calls[0])
}

func TestHandleListCalendars_MissingLocation(t *testing.T) {
	tokens := &stubTokens{token: "tok"}
	app := newCalendarApp(NewCalendarController(tokens, &stubAPI{}, &stubSyncer{}, nil))

	status, body := doRequest(t, app, httptest.NewRequest("GET", "/calendars", nil))

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Equal(t, "MissingArgument", body.Error)
	assert.Empty(t, tokens.calls)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no credential", fmt.Errorf("loc_1: %w", syncerr.ErrCredentialNotFound), fiber.StatusNotFound, "CredentialNotFound"},
		{"no credential behind token error", fmt.Errorf("%w: %w", syncerr.ErrTokenUnavailable, syncerr.ErrCredentialNotFound), fiber.StatusUnauthorized, "TokenUnavailable"},
		{"token unavailable", fmt.Errorf("loc_1: %w", syncerr.ErrTokenUnavailable), fiber.StatusUnauthorized, "TokenUnavailable"},
		{"remote failure", &ghl.APIError{Method: "GET", Path: "/calendars/", Status: 500, Body: `{"message":"boom"}`}, fiber.StatusBadGateway, "RemoteFetchFailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &stubTokens{token: "tok"}
			api := &stubAPI{}
			if _, ok := tt.err.(*ghl.APIError); ok {
				api.err = tt.err
			} else {
				tokens.err = tt.err
			}
			app := newCalendarApp(NewCalendarController(tokens, api, &stubSyncer{}, nil))

			status, body := doRequest(t, app, httptest.NewRequest("GET", "/calendars?locationId=loc_1", nil))

			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

func TestRemoteFailureCarriesDetails(t *testing.T) {
	api := &stubAPI{err: &ghl.APIError{Method: "GET", Path: "/calendars/", Status: 422, Body: `{"message":"bad location"}`}}
	app := newCalendarApp(NewCalendarController(&stubTokens{token: "tok"}, api, &stubSyncer{}, nil))

	status, body := doRequest(t, app, httptest.NewRequest("GET", "/calendars?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.JSONEq(t, `{"message":"bad location"}`, string(body.Details))
}

func TestHandleFreeSlots(t *testing.T) {
	api := &stubAPI{slots: []byte(`{"2024-01-16":{"slots":["2024-01-16T09:00:00-05:00"]}}`)}
	app := newCalendarApp(NewCalendarController(&stubTokens{token: "tok"}, api, &stubSyncer{}, nil))

	req := httptest.NewRequest("GET", "/calendars/cal_1/free-slots?locationId=loc_1&startDate=1705363200000&endDate=1705449600000&timezone=America/New_York", nil)
	status, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body.Data), "2024-01-16")
	assert.Equal(t, ghl.FreeSlotsQuery{StartDate: 1705363200000, EndDate: 1705449600000, Timezone: "America/New_York"}, api.lastSlots)
}

func TestHandleFreeSlots_InvalidRange(t *testing.T) {
	api := &stubAPI{}
	app := newCalendarApp(NewCalendarController(&stubTokens{token: "tok"}, api, &stubSyncer{}, nil))

	req := httptest.NewRequest("GET", "/calendars/cal_1/free-slots?locationId=loc_1&startDate=200&endDate=100", nil)
	status, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body.Details), "gtfield")
	assert.Zero(t, api.calls)
}

func TestHandleSyncCalendar(t *testing.T) {
	syncer := &stubSyncer{calendar: &calendarsync.CalendarSyncResult{
		Success:    true,
		CalendarID: "cal_1",
		SavedID:    3,
		Failures:   []*syncerr.RecordError{{Entity: "open_hours", Key: "day_of_the_week=2", Err: fmt.Errorf("boom")}},
	}}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, nil))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/sync?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, "Calendar synced, 1 records skipped", body.Message)
	assert.Contains(t, string(body.Data), `"saved_id":3`)
}

func TestHandleSyncCalendar_NotFound(t *testing.T) {
	syncer := &stubSyncer{err: syncerr.ErrRemoteCalendarNotFound}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, nil))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/sync?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "RemoteCalendarNotFound", body.Error)
}

func TestHandleSyncCalendar_PersistFailure(t *testing.T) {
	syncer := &stubSyncer{err: fmt.Errorf("save: %w", syncerr.ErrCalendarPersistFailed)}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, nil))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/sync?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "CalendarPersistFailed", body.Error)
}

func TestHandleSyncCalendar_Async(t *testing.T) {
	jobs := &stubJobs{job: &jobqueue.Job{ID: "job-1", Type: jobqueue.JobTypeCalendarSync, Status: jobqueue.JobStatusPending}}
	syncer := &stubSyncer{}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, jobs))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/sync?locationId=loc_1&async=1", nil))

	assert.Equal(t, fiber.StatusAccepted, status)
	assert.Contains(t, string(body.Data), `"id":"job-1"`)
	assert.Equal(t, []jobqueue.JobType{jobqueue.JobTypeCalendarSync}, jobs.enqueued)
	assert.Zero(t, syncer.calls)
}

func TestHandleSyncCalendar_AsyncWithoutQueue(t *testing.T) {
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, &stubSyncer{}, nil))

	status, _ := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/sync?locationId=loc_1&async=true", nil))

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestHandleSyncBookedSlots_NoEvents(t *testing.T) {
	syncer := &stubSyncer{booking: &calendarsync.BookingSyncResult{Success: false, Message: "no events", Events: []ghl.Event{}}}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, nil))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/booked-slots/sync?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.False(t, body.Success)
	assert.Equal(t, "no events", body.Message)
	assert.Contains(t, string(body.Data), `"events":[]`)
}

func TestHandleSyncBookedSlots_Saved(t *testing.T) {
	syncer := &stubSyncer{booking: &calendarsync.BookingSyncResult{
		Success:   true,
		Events:    []ghl.Event{{ID: "ev_1"}, {ID: "ev_2"}},
		Persisted: 2,
	}}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, nil))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/booked-slots/sync?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, "2 of 2 events saved", body.Message)
}

func TestHandleSyncBookedSlots_MissingToken(t *testing.T) {
	syncer := &stubSyncer{err: fmt.Errorf("token: %w", syncerr.ErrTokenUnavailable)}
	app := newCalendarApp(NewCalendarController(&stubTokens{}, &stubAPI{}, syncer, nil))

	status, body := doRequest(t, app, httptest.NewRequest("POST", "/calendars/cal_1/booked-slots/sync?locationId=loc_1", nil))

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "TokenUnavailable", body.Error)
}

func TestSyncWithoutCredentialIsTokenUnavailable(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"calendar", "/calendars/cal_1/sync?locationId=loc_1"},
		{"booked slots", "/calendars/cal_1/booked-slots/sync?locationId=loc_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := &emptyCredentials{}
			tokens := token.NewManager(creds, nil)
			api := &stubAPI{}
			svc := calendarsync.NewService(tokens, api, nil, calendarsync.Stores{
				Calendars:   reconciletest.NewMemoryStore[models.CalendarRecord, *models.CalendarRecord](),
				OpenHours:   reconciletest.NewMemoryStore[models.OpenHoursEntry, *models.OpenHoursEntry](),
				TeamMembers: reconciletest.NewMemoryStore[models.TeamMemberAssignment, *models.TeamMemberAssignment](),
				Events:      reconciletest.NewMemoryStore[models.BookedSlotEvent, *models.BookedSlotEvent](),
			})
			app := newCalendarApp(NewCalendarController(tokens, api, svc, nil))

			status, body := doRequest(t, app, httptest.NewRequest("POST", tt.path, nil))

			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.False(t, body.Success)
			assert.Equal(t, "TokenUnavailable", body.Error)
			assert.Equal(t, 1, creds.finds)
			assert.Zero(t, api.calls)
		})
	}
}
