package models

import "time"

const (
	ColOpenHoursCalendar = "calendar_uuid"
	ColOpenHoursDay      = "day_of_the_week"
)

// OpenHoursEntry is one weekly availability window of a calendar, stored in
// UTC. There is at most one entry per (calendar, day of week).
type OpenHoursEntry struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CalendarRecordID uint      `gorm:"column:calendar_uuid;not null;uniqueIndex:ux_open_hours_calendar_day,priority:1" json:"calendar_uuid"`
	DayOfWeek        int       `gorm:"column:day_of_the_week;not null;uniqueIndex:ux_open_hours_calendar_day,priority:2" json:"day_of_the_week"`
	OpenHour         int       `gorm:"column:open_hour;not null;default:0" json:"open_hour"`
	OpenMinute       int       `gorm:"column:open_minute;not null;default:0" json:"open_minute"`
	CloseHour        int       `gorm:"column:close_hour;not null;default:0" json:"close_hour"`
	CloseMinute      int       `gorm:"column:close_minute;not null;default:0" json:"close_minute"`
	CalendarID       string    `gorm:"column:ghl_calendar_id;type:varchar(64);index" json:"ghl_calendar_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	CalendarRecord *CalendarRecord `gorm:"foreignKey:CalendarRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (OpenHoursEntry) TableName() string { return "calendar_open_hours" }

func (e *OpenHoursEntry) LookupKey() map[string]any {
	return map[string]any{
		ColOpenHoursCalendar: e.CalendarRecordID,
		ColOpenHoursDay:      e.DayOfWeek,
	}
}

func (e *OpenHoursEntry) GetID() uint   { return e.ID }
func (e *OpenHoursEntry) SetID(id uint) { e.ID = id }
