package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Contact is a person scoped to one organization. Most columns are
// nullable on purpose: contacts are often auto-created from a single
// identity signal and enriched later.
type Contact struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	FirstName    string            `gorm:"type:text" json:"first_name"`
	LastName     string            `gorm:"type:text" json:"last_name"`
	Email        string            `gorm:"type:text;index:ix_contacts_org_email" json:"email,omitempty"`
	Phone        string            `gorm:"type:text" json:"phone,omitempty"`
	Mobile       string            `gorm:"type:text" json:"mobile,omitempty"`
	Title        string            `gorm:"type:text" json:"title,omitempty"`
	LinkedIn     string            `gorm:"column:linkedin;type:text" json:"linkedin,omitempty"`
	Twitter      string            `gorm:"type:text" json:"twitter,omitempty"`
	Github       string            `gorm:"type:text" json:"github,omitempty"`
	Npm          string            `gorm:"type:text" json:"npm,omitempty"`
	Avatar       string            `gorm:"type:text" json:"avatar,omitempty"`
	Address      string            `gorm:"type:text" json:"address,omitempty"`
	City         string            `gorm:"type:text" json:"city,omitempty"`
	State        string            `gorm:"type:text" json:"state,omitempty"`
	Country      string            `gorm:"type:text" json:"country,omitempty"`
	CompanyID    *snowflake.ID     `gorm:"index" json:"company_id,omitempty"`
	CustomFields datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"custom_fields,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Contact) TableName() string { return "contacts" }

// DisplayName returns the best human-readable label for the contact.
func (c Contact) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	if c.Github != "" {
		return c.Github
	}
	return c.ID.String()
}

// MergeableFields is the fixed set of scalar columns eligible for the
// non-destructive field union during a merge: a duplicate's value is
// adopted only when the primary's is empty.
var MergeableFields = []string{
	"email",
	"phone",
	"mobile",
	"title",
	"linkedin",
	"twitter",
	"github",
	"avatar",
	"address",
	"city",
	"state",
	"country",
}

// FieldValue reads one mergeable column by name.
func (c Contact) FieldValue(field string) string {
	switch field {
	case "email":
		return c.Email
	case "phone":
		return c.Phone
	case "mobile":
		return c.Mobile
	case "title":
		return c.Title
	case "linkedin":
		return c.LinkedIn
	case "twitter":
		return c.Twitter
	case "github":
		return c.Github
	case "avatar":
		return c.Avatar
	case "address":
		return c.Address
	case "city":
		return c.City
	case "state":
		return c.State
	case "country":
		return c.Country
	default:
		return ""
	}
}
