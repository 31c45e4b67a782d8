// Package domain contains persistence models for the org service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Organization represents a tenant.
type Organization struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:text;not null" json:"name"`
	Slug      string         `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	Settings  datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"settings"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// AutoMergeRecord is one entry in the tenant's auto-merge audit trail,
// kept inside Organization.Settings as a capped FIFO list.
type AutoMergeRecord struct {
	PrimaryID        string    `json:"primary_id"`
	PrimaryName      string    `json:"primary_name"`
	MergedID         string    `json:"merged_id"`
	MergedName       string    `json:"merged_name"`
	Confidence       float64   `json:"confidence"`
	SharedIdentities []string  `json:"shared_identities"`
	MergedAt         time.Time `json:"merged_at"`
}

// AutoMergeHistoryCap bounds the audit trail; the oldest entries are
// evicted first.
const AutoMergeHistoryCap = 100

// SettingsKeyAutoMergeHistory is the settings JSON key holding the trail.
const SettingsKeyAutoMergeHistory = "auto_merge_history"

var ErrNotFound = errors.New("not_found")

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	AutoMergeHistory(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]AutoMergeRecord, error)
	AppendAutoMergeRecord(ctx context.Context, db *gorm.DB, orgID snowflake.ID, record AutoMergeRecord) error
}
