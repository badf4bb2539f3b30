package models

import (
	"time"

	"gorm.io/datatypes"
)

const ColCalendarExternalID = "calendar_id"

// CalendarRecord mirrors one remote calendar's configuration. All duration
// fields are stored in seconds. The surrogate ID is the join key for the
// open-hours and team-member tables.
type CalendarRecord struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	CalendarID          string         `gorm:"column:calendar_id;type:varchar(64);not null;uniqueIndex" json:"calendar_id"`
	Name                string         `gorm:"column:name;type:varchar(255)" json:"name"`
	SlotInterval        int64          `gorm:"column:slot_interval;not null;default:0" json:"slot_interval"`
	SlotDuration        int64          `gorm:"column:slot_duration;not null;default:0" json:"slot_duration"`
	PreBufferTime       int64          `gorm:"column:pre_buffer_time;not null;default:0" json:"pre_buffer_time"`
	IsActive            bool           `gorm:"column:is_active;not null" json:"is_active"`
	GroupID             string         `gorm:"column:group_id;type:varchar(64)" json:"group_id"`
	Slug                string         `gorm:"column:slug;type:varchar(255)" json:"slug"`
	AppointmentsPerSlot int            `gorm:"column:appointments_per_slot;not null;default:0" json:"appointments_per_slot"`
	AppointmentsPerDay  int            `gorm:"column:appointments_per_day;not null;default:0" json:"appointments_per_day"`
	AllowBookingAfter   int64          `gorm:"column:allow_booking_after_day;not null;default:0" json:"allow_booking_after"`
	AllowCancellation   bool           `gorm:"column:allow_cancellation;not null;default:false" json:"allow_cancellation"`
	AllowReschedule     bool           `gorm:"column:allow_reschedule;not null;default:false" json:"allow_reschedule"`
	AllowBookingFor     int64          `gorm:"column:allow_booking_for_days;not null;default:0" json:"allow_booking_for"`
	LocationID          string         `gorm:"column:ghl_location_id;type:varchar(64);index" json:"location_id"`
	RawPayload          datatypes.JSON `gorm:"column:raw_payload;type:json" json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (CalendarRecord) TableName() string { return "calendar_data" }

func (r *CalendarRecord) LookupKey() map[string]any {
	return map[string]any{ColCalendarExternalID: r.CalendarID}
}

func (r *CalendarRecord) GetID() uint   { return r.ID }
func (r *CalendarRecord) SetID(id uint) { r.ID = id }
