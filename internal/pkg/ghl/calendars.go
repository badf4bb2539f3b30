package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

// GetCalendar fetches one calendar's configuration. A missing calendar, either
// a 404 or an empty payload, yields syncerr.ErrRemoteCalendarNotFound.
func (c *Client) GetCalendar(ctx context.Context, token, calendarID string) (*Calendar, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendar id: %w", syncerr.ErrMissingArgument)
	}

	var envelope struct {
		Calendar json.RawMessage `json:"calendar"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/calendars/" + url.PathEscape(calendarID),
		token:  token,
	}, &envelope)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("calendar %s: %w: %w", calendarID, syncerr.ErrRemoteCalendarNotFound, err)
		}
		return nil, err
	}

	raw := bytes.TrimSpace(envelope.Calendar)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("calendar %s: %w", calendarID, syncerr.ErrRemoteCalendarNotFound)
	}

	var cal Calendar
	if err := json.Unmarshal(raw, &cal); err != nil {
		return nil, fmt.Errorf("calendar %s: decode: %w: %w", calendarID, syncerr.ErrRemoteFetchFailed, err)
	}
	cal.Raw = append(json.RawMessage(nil), raw...)
	return &cal, nil
}

// ListCalendars returns every calendar of a location, active or not.
func (c *Client) ListCalendars(ctx context.Context, token, locationID string) ([]Calendar, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location id: %w", syncerr.ErrMissingArgument)
	}

	var envelope struct {
		Calendars []Calendar `json:"calendars"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/calendars/",
		query:  url.Values{"locationId": {locationID}},
		token:  token,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Calendars, nil
}

// ActiveCalendars projects the active calendars of a location to id and name.
func (c *Client) ActiveCalendars(ctx context.Context, token, locationID string) ([]CalendarSummary, error) {
	cals, err := c.ListCalendars(ctx, token, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]CalendarSummary, 0, len(cals))
	for _, cal := range cals {
		if cal.Active() {
			out = append(out, CalendarSummary{ID: cal.ID, Name: cal.Name})
		}
	}
	return out, nil
}

// ListEvents returns the events of a calendar between q.StartTime and q.EndTime.
func (c *Client) ListEvents(ctx context.Context, token string, q EventQuery) ([]Event, error) {
	if q.CalendarID == "" || q.LocationID == "" {
		return nil, fmt.Errorf("calendar and location id: %w", syncerr.ErrMissingArgument)
	}

	var envelope struct {
		Events []Event `json:"events"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/calendars/events",
		query: url.Values{
			"locationId": {q.LocationID},
			"calendarId": {q.CalendarID},
			"startTime":  {strconv.FormatInt(q.StartTime.UnixMilli(), 10)},
			"endTime":    {strconv.FormatInt(q.EndTime.UnixMilli(), 10)},
		},
		token: token,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Events, nil
}

// FreeSlots returns the platform's free-slot response unchanged.
func (c *Client) FreeSlots(ctx context.Context, token, calendarID string, q FreeSlotsQuery) (json.RawMessage, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendar id: %w", syncerr.ErrMissingArgument)
	}

	query := url.Values{
		"startDate": {strconv.FormatInt(q.StartDate, 10)},
		"endDate":   {strconv.FormatInt(q.EndDate, 10)},
	}
	if q.Timezone != "" {
		query.Set("timezone", q.Timezone)
	}

	var out json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/calendars/" + url.PathEscape(calendarID) + "/free-slots",
		query:  query,
		token:  token,
	}, &out)
	return out, err
}

func (c *Client) CreateAppointment(ctx context.Context, token string, in AppointmentRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/calendars/events/appointments",
		token:  token,
		body:   in,
	}, &out)
	return out, err
}
