package models

import "time"

const ColBookedSlotEventID = "ghl_event_id"

// BookedSlotEvent is a flat copy of one remote calendar event. Start and end
// are UTC epoch seconds.
type BookedSlotEvent struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	EventID           string    `gorm:"column:ghl_event_id;type:varchar(64);not null;uniqueIndex" json:"ghl_event_id"`
	Title             string    `gorm:"column:title;type:varchar(255)" json:"title"`
	AppointmentStatus string    `gorm:"column:appointment_status;type:varchar(32)" json:"appointment_status"`
	LocationID        string    `gorm:"column:ghl_location_id;type:varchar(64);index" json:"ghl_location_id"`
	AssignedUserID    string    `gorm:"column:ghl_assigned_user_id;type:varchar(64)" json:"ghl_assigned_user_id"`
	CalendarID        string    `gorm:"column:ghl_calendar_id;type:varchar(64);index" json:"ghl_calendar_id"`
	StartTime         int64     `gorm:"column:start_time;not null" json:"start_time"`
	EndTime           int64     `gorm:"column:end_time;not null" json:"end_time"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (BookedSlotEvent) TableName() string { return "calendar_booked_slots" }

func (e *BookedSlotEvent) LookupKey() map[string]any {
	return map[string]any{ColBookedSlotEventID: e.EventID}
}

func (e *BookedSlotEvent) GetID() uint   { return e.ID }
func (e *BookedSlotEvent) SetID(id uint) { e.ID = id }
