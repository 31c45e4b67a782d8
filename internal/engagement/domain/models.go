package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Signal is one raw activity event (GitHub star, npm download, webhook
// ping, analytics event) attributed to a contact once resolved.
type Signal struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	ActorContactID *snowflake.ID     `gorm:"index" json:"actor_contact_id,omitempty"`
	Source         string            `gorm:"type:text;not null" json:"source"`
	Kind           string            `gorm:"type:text;not null" json:"kind"`
	Payload        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payload,omitempty"`
	OccurredAt     time.Time         `gorm:"not null" json:"occurred_at"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Signal) TableName() string { return "signals" }

// Activity is a logged touchpoint with a contact (note, call, meeting).
type Activity struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organization_id"`
	ContactID  snowflake.ID `gorm:"not null;index" json:"contact_id"`
	Kind       string       `gorm:"type:text;not null" json:"kind"`
	Subject    string       `gorm:"type:text" json:"subject,omitempty"`
	Body       string       `gorm:"type:text" json:"body,omitempty"`
	OccurredAt time.Time    `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }

type Deal struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	ContactID *snowflake.ID `gorm:"index" json:"contact_id,omitempty"`
	CompanyID *snowflake.ID `gorm:"index" json:"company_id,omitempty"`
	Name      string        `gorm:"type:text;not null" json:"name"`
	Stage     string        `gorm:"type:text;not null" json:"stage"`
	Amount    float64       `gorm:"not null;default:0" json:"amount"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Deal) TableName() string { return "deals" }

type EmailEnrollment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organization_id"`
	ContactID  snowflake.ID `gorm:"not null;index" json:"contact_id"`
	SequenceID snowflake.ID `gorm:"not null" json:"sequence_id"`
	Status     string       `gorm:"type:text;not null" json:"status"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (EmailEnrollment) TableName() string { return "email_enrollments" }

type Tag struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Tag) TableName() string { return "tags" }

type ContactTag struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ContactID snowflake.ID `gorm:"not null;uniqueIndex:ux_contact_tags,priority:1" json:"contact_id"`
	TagID     snowflake.ID `gorm:"not null;uniqueIndex:ux_contact_tags,priority:2" json:"tag_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ContactTag) TableName() string { return "contact_tags" }

// Repository exposes the reassignment primitives the merge engine runs
// inside one transaction, plus the counts the auto-merge guards need.
type Repository interface {
	ReassignSignals(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error
	ReassignActivities(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error
	ReassignDeals(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error
	ReassignEnrollments(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error
	// MoveTags repoints tag links, skipping links the target already has.
	MoveTags(ctx context.Context, tx *gorm.DB, from, to snowflake.ID) error
	CountSignalsByContact(ctx context.Context, db *gorm.DB, orgID, contactID snowflake.ID) (int64, error)
}
