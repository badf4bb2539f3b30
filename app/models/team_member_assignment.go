package models

import "time"

const (
	ColTeamMemberCalendar = "calendar_uuid"
	ColTeamMemberUser     = "user_id"
)

// TeamMemberAssignment links a remote user to a calendar with a priority weight.
type TeamMemberAssignment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CalendarRecordID uint      `gorm:"column:calendar_uuid;not null;uniqueIndex:ux_team_member_calendar_user,priority:1" json:"calendar_uuid"`
	UserID           string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:ux_team_member_calendar_user,priority:2" json:"user_id"`
	Priority         float64   `gorm:"column:priority;not null;default:0" json:"priority"`
	IsPrimary        bool      `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	CalendarID       string    `gorm:"column:ghl_calendar_id;type:varchar(64);index" json:"ghl_calendar_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	CalendarRecord *CalendarRecord `gorm:"foreignKey:CalendarRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (TeamMemberAssignment) TableName() string { return "calendar_team_members" }

func (a *TeamMemberAssignment) LookupKey() map[string]any {
	return map[string]any{
		ColTeamMemberCalendar: a.CalendarRecordID,
		ColTeamMemberUser:     a.UserID,
	}
}

func (a *TeamMemberAssignment) GetID() uint   { return a.ID }
func (a *TeamMemberAssignment) SetID(id uint) { a.ID = id }
