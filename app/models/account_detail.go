package models

import "time"

const (
	ColAccountDetailAccountID = "ghl_id"
	ColAccountDetailTimezone  = "ghl_location_timezone"
)

// AccountDetail caches descriptive data about a tenant location, most
// importantly the IANA timezone used to convert open hours to UTC.
type AccountDetail struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID string    `gorm:"column:ghl_id;type:varchar(64);not null;uniqueIndex" json:"account_id"`
	CompanyID string    `gorm:"column:ghl_company_id;type:varchar(64)" json:"company_id"`
	Name      string    `gorm:"column:name;type:varchar(255)" json:"name"`
	Email     string    `gorm:"column:email;type:varchar(255)" json:"email"`
	Timezone  string    `gorm:"column:ghl_location_timezone;type:varchar(64);not null;default:'UTC'" json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccountDetail) TableName() string { return "ghl_account_details" }

func (d *AccountDetail) LookupKey() map[string]any {
	return map[string]any{ColAccountDetailAccountID: d.AccountID}
}

func (d *AccountDetail) GetID() uint   { return d.ID }
func (d *AccountDetail) SetID(id uint) { d.ID = id }
