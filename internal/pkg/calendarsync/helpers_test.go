package calendarsync

import (
	"context"
	"sync"
	"time"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile/reconciletest"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

type stubTokens struct {
	token string
	err   error
	calls int
}

func (s *stubTokens) UsableToken(context.Context, string, models.AccountKind) (string, error) {
	s.calls++
	return s.token, s.err
}

type stubAPI struct {
	mu       sync.Mutex
	calendar *ghl.Calendar
	events   []ghl.Event
	err      error

	calendarCalls int
	eventCalls    int
	lastQuery     ghl.EventQuery
}

func (a *stubAPI) GetCalendar(_ context.Context, token, calendarID string) (*ghl.Calendar, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calendarCalls++
	if a.err != nil {
		return nil, a.err
	}
	if a.calendar == nil {
		return nil, syncerr.ErrRemoteCalendarNotFound
	}
	cp := *a.calendar
	return &cp, nil
}

func (a *stubAPI) ListEvents(_ context.Context, token string, q ghl.EventQuery) ([]ghl.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventCalls++
	a.lastQuery = q
	return a.events, a.err
}

func (a *stubAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calendarCalls + a.eventCalls
}

type stubTimezones map[string]string

func (s stubTimezones) LocationTimezone(_ context.Context, locationID string) (string, error) {
	return s[locationID], nil
}

type testStores struct {
	calendars   *reconciletest.MemoryStore[models.CalendarRecord, *models.CalendarRecord]
	openHours   *reconciletest.MemoryStore[models.OpenHoursEntry, *models.OpenHoursEntry]
	teamMembers *reconciletest.MemoryStore[models.TeamMemberAssignment, *models.TeamMemberAssignment]
	events      *reconciletest.MemoryStore[models.BookedSlotEvent, *models.BookedSlotEvent]
}

func newTestStores() *testStores {
	return &testStores{
		calendars:   reconciletest.NewMemoryStore[models.CalendarRecord, *models.CalendarRecord](),
		openHours:   reconciletest.NewMemoryStore[models.OpenHoursEntry, *models.OpenHoursEntry](),
		teamMembers: reconciletest.NewMemoryStore[models.TeamMemberAssignment, *models.TeamMemberAssignment](),
		events:      reconciletest.NewMemoryStore[models.BookedSlotEvent, *models.BookedSlotEvent](),
	}
}

func (s *testStores) Stores() Stores {
	return Stores{
		Calendars:   s.calendars,
		OpenHours:   s.openHours,
		TeamMembers: s.teamMembers,
		Events:      s.events,
	}
}

func (s *testStores) calls() int {
	return s.calendars.Calls() + s.openHours.Calls() + s.teamMembers.Calls() + s.events.Calls()
}

// January, so America/New_York is UTC-5.
var syncTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return syncTime })
}

func boolPtr(b bool) *bool { return &b }

func sampleCalendar() *ghl.Calendar {
	return &ghl.Calendar{
		ID:                  "cal_1",
		Name:                "Intro Call",
		LocationID:          "loc_1",
		SlotInterval:        30,
		SlotIntervalUnit:    "mins",
		SlotDuration:        30,
		SlotDurationUnit:    "mins",
		PreBuffer:           1,
		PreBufferUnit:       "hours",
		AppointmentsPerSlot: 1,
		AppointmentsPerDay:  8,
		AllowBookingAfter:   2,
		AllowBookingFor:     7,
		AllowBookingForUnit: "days",
		AllowCancellation:   true,
		OpenHours: []ghl.OpenHours{
			{
				DaysOfTheWeek: []int{2, 3, 4},
				Hours:         []ghl.HourBlock{{OpenHour: 9, OpenMinute: 0, CloseHour: 17, CloseMinute: 30}},
			},
		},
		TeamMembers: []ghl.TeamMember{
			{UserID: "usr_1", Priority: 0.5, IsPrimary: true},
			{UserID: "usr_2", Priority: 1},
		},
	}
}
