package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/calendarsync"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/ManuelReschke/SlotSync/internal/pkg/token"
)

type tokenCall struct {
	accountID  string
	kind       models.AccountKind
	allowStale bool
}

type stubTokens struct {
	token string
	err   error
	calls []tokenCall
}

func (s *stubTokens) Token(_ context.Context, accountID string, kind models.AccountKind, opts ...token.RequestOption) (string, error) {
	s.calls = append(s.calls, tokenCall{accountID: accountID, kind: kind, allowStale: len(opts) > 0})
	return s.token, s.err
}

type stubAPI struct {
	err error

	calendars   []ghl.CalendarSummary
	slots       json.RawMessage
	location    *ghl.Location
	company     json.RawMessage
	created     json.RawMessage
	lastToken   string
	lastSlots   ghl.FreeSlotsQuery
	lastAppt    ghl.AppointmentRequest
	lastContact ghl.ContactRequest
	calls       int
}

func (a *stubAPI) ActiveCalendars(_ context.Context, token, locationID string) ([]ghl.CalendarSummary, error) {
	a.calls++
	a.lastToken = token
	return a.calendars, a.err
}

func (a *stubAPI) FreeSlots(_ context.Context, token, calendarID string, q ghl.FreeSlotsQuery) (json.RawMessage, error) {
	a.calls++
	a.lastToken = token
	a.lastSlots = q
	return a.slots, a.err
}

func (a *stubAPI) CreateAppointment(_ context.Context, token string, in ghl.AppointmentRequest) (json.RawMessage, error) {
	a.calls++
	a.lastToken = token
	a.lastAppt = in
	return a.created, a.err
}

func (a *stubAPI) UpsertContact(_ context.Context, token string, in ghl.ContactRequest) (json.RawMessage, error) {
	a.calls++
	a.lastToken = token
	a.lastContact = in
	return a.created, a.err
}

func (a *stubAPI) CreateCustomField(_ context.Context, token, locationID string) (json.RawMessage, error) {
	a.calls++
	a.lastToken = token
	return a.created, a.err
}

func (a *stubAPI) GetLocation(_ context.Context, token, locationID string) (*ghl.Location, error) {
	a.calls++
	a.lastToken = token
	return a.location, a.err
}

func (a *stubAPI) GetCompany(_ context.Context, token, companyID string) (json.RawMessage, error) {
	a.calls++
	a.lastToken = token
	return a.company, a.err
}

func (a *stubAPI) GetCalendar(_ context.Context, token, calendarID string) (*ghl.Calendar, error) {
	a.calls++
	a.lastToken = token
	return nil, a.err
}

func (a *stubAPI) ListEvents(_ context.Context, token string, q ghl.EventQuery) ([]ghl.Event, error) {
	a.calls++
	a.lastToken = token
	return nil, a.err
}

// emptyCredentials has no credential for any account.
type emptyCredentials struct {
	finds int
}

func (s *emptyCredentials) FindCredential(_ context.Context, accountID string, kind models.AccountKind) (*models.AccountCredential, error) {
	s.finds++
	return nil, fmt.Errorf("%s %s: %w", kind, accountID, syncerr.ErrCredentialNotFound)
}

func (s *emptyCredentials) SaveCredential(context.Context, *models.AccountCredential) error {
	return nil
}

type stubSyncer struct {
	calendar *calendarsync.CalendarSyncResult
	booking  *calendarsync.BookingSyncResult
	err      error
	calls    int
}

func (s *stubSyncer) SyncCalendar(context.Context, string, string) (*calendarsync.CalendarSyncResult, error) {
	s.calls++
	return s.calendar, s.err
}

func (s *stubSyncer) SyncBookedSlots(context.Context, string, string) (*calendarsync.BookingSyncResult, error) {
	s.calls++
	return s.booking, s.err
}

type stubJobs struct {
	job        *jobqueue.Job
	err        error
	enqueued   []jobqueue.JobType
	stats      map[jobqueue.JobStatus]int64
	pending    int64
	processing int64
}

func (s *stubJobs) EnqueueCalendarSync(_ context.Context, calendarID, locationID string) (*jobqueue.Job, error) {
	s.enqueued = append(s.enqueued, jobqueue.JobTypeCalendarSync)
	return s.job, s.err
}

func (s *stubJobs) EnqueueBookedSlotsSync(_ context.Context, calendarID, locationID string) (*jobqueue.Job, error) {
	s.enqueued = append(s.enqueued, jobqueue.JobTypeBookedSlotsSync)
	return s.job, s.err
}

func (s *stubJobs) GetJob(context.Context, string) (*jobqueue.Job, error) {
	return s.job, s.err
}

func (s *stubJobs) GetJobStats(context.Context) (map[jobqueue.JobStatus]int64, error) {
	return s.stats, s.err
}

func (s *stubJobs) GetQueueSize(context.Context) (int64, error) {
	return s.pending, s.err
}

func (s *stubJobs) GetProcessingSize(context.Context) (int64, error) {
	return s.processing, s.err
}

type decodedResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, decodedResponse) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out decodedResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}
