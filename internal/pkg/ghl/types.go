package ghl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Calendar struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	LocationID            string       `json:"locationId"`
	GroupID               string       `json:"groupId"`
	Slug                  string       `json:"slug"`
	IsActive              *bool        `json:"isActive"`
	SlotInterval          float64      `json:"slotInterval"`
	SlotIntervalUnit      string       `json:"slotIntervalUnit"`
	SlotDuration          float64      `json:"slotDuration"`
	SlotDurationUnit      string       `json:"slotDurationUnit"`
	PreBuffer             float64      `json:"preBuffer"`
	PreBufferUnit         string       `json:"preBufferUnit"`
	AppointmentsPerSlot   float64      `json:"appoinmentPerSlot"`
	AppointmentsPerDay    float64      `json:"appoinmentPerDay"`
	AllowBookingAfter     float64      `json:"allowBookingAfter"`
	AllowBookingAfterUnit string       `json:"allowBookingAfterUnit"`
	AllowBookingFor       float64      `json:"allowBookingFor"`
	AllowBookingForUnit   string       `json:"allowBookingForUnit"`
	AllowCancellation     bool         `json:"allowCancellation"`
	AllowReschedule       bool         `json:"allowReschedule"`
	OpenHours             []OpenHours  `json:"openHours"`
	TeamMembers           []TeamMember `json:"teamMembers"`

	// Raw is the calendar object exactly as the API returned it.
	Raw json.RawMessage `json:"-"`
}

// Active reports the remote active flag. An absent flag counts as active.
func (c *Calendar) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

type OpenHours struct {
	DaysOfTheWeek []int       `json:"daysOfTheWeek"`
	Hours         []HourBlock `json:"hours"`
}

type HourBlock struct {
	OpenHour    int `json:"openHour"`
	OpenMinute  int `json:"openMinute"`
	CloseHour   int `json:"closeHour"`
	CloseMinute int `json:"closeMinute"`
}

type TeamMember struct {
	UserID    string  `json:"userId"`
	Priority  float64 `json:"priority"`
	IsPrimary bool    `json:"isPrimary"`
}

// CalendarSummary is the list-calendars projection.
type CalendarSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Event struct {
	ID                string    `json:"id"`
	Title             string    `json:"title,omitempty"`
	AppointmentStatus string    `json:"appointmentStatus"`
	LocationID        string    `json:"locationId"`
	AssignedUserID    string    `json:"assignedUserId"`
	CalendarID        string    `json:"calendarId"`
	StartTime         Timestamp `json:"startTime"`
	EndTime           Timestamp `json:"endTime"`
}

// Timestamp accepts RFC 3339 strings, zone-less date-times (read as UTC) and
// epoch milliseconds, which the events API mixes depending on endpoint.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if b[0] != '"' {
		ms, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("timestamp %s: %w", b, err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unsupported format", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

type EventQuery struct {
	LocationID string
	CalendarID string
	StartTime  time.Time
	EndTime    time.Time
}

type FreeSlotsQuery struct {
	StartDate int64  `query:"startDate" validate:"required"`
	EndDate   int64  `query:"endDate" validate:"required,gtfield=StartDate"`
	Timezone  string `query:"timezone"`
}

type Location struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Timezone  string `json:"timezone"`

	Raw json.RawMessage `json:"-"`
}

type AppointmentRequest struct {
	CalendarID        string `json:"calendarId" validate:"required"`
	LocationID        string `json:"locationId" validate:"required"`
	ContactID         string `json:"contactId" validate:"required"`
	StartTime         string `json:"startTime" validate:"required"`
	EndTime           string `json:"endTime,omitempty"`
	Title             string `json:"title,omitempty"`
	AppointmentStatus string `json:"appointmentStatus,omitempty" validate:"omitempty,oneof=new confirmed cancelled showed noshow invalid"`
	AssignedUserID    string `json:"assignedUserId,omitempty"`
	Address           string `json:"address,omitempty"`
	IgnoreDateRange   bool   `json:"ignoreDateRange,omitempty"`
	ToNotify          bool   `json:"toNotify,omitempty"`
}

type CustomFieldValue struct {
	ID         string `json:"id,omitempty"`
	Key        string `json:"key,omitempty"`
	FieldValue string `json:"field_value"`
}

type ContactRequest struct {
	LocationID   string             `json:"locationId" validate:"required"`
	FirstName    string             `json:"firstName,omitempty"`
	LastName     string             `json:"lastName,omitempty"`
	Name         string             `json:"name,omitempty"`
	Email        string             `json:"email,omitempty" validate:"required_without=Phone,omitempty,email"`
	Phone        string             `json:"phone,omitempty" validate:"required_without=Email"`
	Timezone     string             `json:"timezone,omitempty"`
	Source       string             `json:"source,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	CustomFields []CustomFieldValue `json:"customFields,omitempty" validate:"dive"`
}

type customFieldRequest struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}
