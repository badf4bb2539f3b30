package models

import "time"

// AccountKind distinguishes an individual location from its parent company.
type AccountKind string

const (
	AccountKindLocation AccountKind = "Location"
	AccountKindCompany  AccountKind = "Company"
)

// ParseAccountKind maps the platform's user_type values onto an AccountKind.
// Unknown values fall back to AccountKindLocation.
func ParseAccountKind(s string) AccountKind {
	switch s {
	case "Company", "company", "COMPANY", "Agency", "agency":
		return AccountKindCompany
	default:
		return AccountKindLocation
	}
}

const (
	ColCredentialAccountID   = "ghl_id"
	ColCredentialAccountKind = "account_type"
)

// AccountCredential holds the current access credential for one tenant account.
// Rows are updated in place on every refresh and never deleted.
type AccountCredential struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	AccountID    string      `gorm:"column:ghl_id;type:varchar(64);not null;uniqueIndex:ux_credential_account,priority:1" json:"account_id"`
	AccountKind  AccountKind `gorm:"column:account_type;type:varchar(16);not null;uniqueIndex:ux_credential_account,priority:2" json:"account_type"`
	CompanyID    string      `gorm:"column:ghl_company_id;type:varchar(64);index" json:"company_id"`
	AccessToken  string      `gorm:"column:access_token;type:text" json:"-"`
	RefreshToken string      `gorm:"column:refresh_token;type:text" json:"-"`
	Scope        string      `gorm:"column:scope;type:text" json:"scope"`
	ExpiresIn    int64       `gorm:"column:expires_in;not null;default:0" json:"expires_in"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (AccountCredential) TableName() string { return "ghl_subaccount_auth" }

// ExpiresAt is the instant the credential's declared lifetime runs out.
func (c *AccountCredential) ExpiresAt() time.Time {
	return c.UpdatedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}
