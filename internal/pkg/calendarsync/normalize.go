package calendarsync

import (
	"math"
	"strings"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"gorm.io/datatypes"
)

// ToSeconds converts a duration given in the platform's unit vocabulary to
// seconds. An empty or unrecognised unit is read as minutes.
func ToSeconds(value float64, unit string) int64 {
	var factor float64
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds", "second", "secs", "sec":
		factor = 1
	case "hours", "hour", "hrs", "hr":
		factor = 3600
	case "days", "day":
		factor = 86400
	case "weeks", "week":
		factor = 604800
	default:
		factor = 60
	}
	return int64(math.Round(value * factor))
}

// normalizeCalendar maps the remote calendar onto its local row. accountID
// fills in the location when the payload omits it.
func normalizeCalendar(cal *ghl.Calendar, accountID string) *models.CalendarRecord {
	locationID := cal.LocationID
	if locationID == "" {
		locationID = accountID
	}
	return &models.CalendarRecord{
		CalendarID:          cal.ID,
		Name:                cal.Name,
		SlotInterval:        ToSeconds(cal.SlotInterval, cal.SlotIntervalUnit),
		SlotDuration:        ToSeconds(cal.SlotDuration, cal.SlotDurationUnit),
		PreBufferTime:       ToSeconds(cal.PreBuffer, cal.PreBufferUnit),
		IsActive:            cal.Active(),
		GroupID:             cal.GroupID,
		Slug:                cal.Slug,
		AppointmentsPerSlot: int(cal.AppointmentsPerSlot),
		AppointmentsPerDay:  int(cal.AppointmentsPerDay),
		AllowBookingAfter:   ToSeconds(cal.AllowBookingAfter, cal.AllowBookingAfterUnit),
		AllowCancellation:   cal.AllowCancellation,
		AllowReschedule:     cal.AllowReschedule,
		AllowBookingFor:     ToSeconds(cal.AllowBookingFor, cal.AllowBookingForUnit),
		LocationID:          locationID,
		RawPayload:          datatypes.JSON(cal.Raw),
	}
}

func normalizeEvent(ev ghl.Event) *models.BookedSlotEvent {
	return &models.BookedSlotEvent{
		EventID:           ev.ID,
		Title:             ev.Title,
		AppointmentStatus: ev.AppointmentStatus,
		LocationID:        ev.LocationID,
		AssignedUserID:    ev.AssignedUserID,
		CalendarID:        ev.CalendarID,
		StartTime:         unixOrZero(ev.StartTime),
		EndTime:           unixOrZero(ev.EndTime),
	}
}

func unixOrZero(ts ghl.Timestamp) int64 {
	if ts.IsZero() {
		return 0
	}
	return ts.Unix()
}
