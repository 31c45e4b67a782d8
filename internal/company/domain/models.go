package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company is an organization record scoped to one tenant. At most one
// company may own a domain within a tenant.
type Company struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_companies_org_domain,priority:1" json:"organization_id"`
	Name         string            `gorm:"type:text;not null" json:"name"`
	Domain       string            `gorm:"type:text;uniqueIndex:ux_companies_org_domain,priority:2" json:"domain,omitempty"`
	GithubOrg    string            `gorm:"column:github_org;type:text" json:"github_org,omitempty"`
	Website      string            `gorm:"type:text" json:"website,omitempty"`
	Size         string            `gorm:"type:text" json:"size,omitempty"`
	Industry     string            `gorm:"type:text" json:"industry,omitempty"`
	CustomFields datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"custom_fields,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }

// FuzzyMatch is a scored candidate from name matching.
type FuzzyMatch struct {
	Company Company
	Score   float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Company, error)
	FindByDomain(ctx context.Context, db *gorm.DB, orgID snowflake.ID, domain string) (*Company, error)
	FindByGithubOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, githubOrg string) (*Company, error)
	// List returns companies by creation order, bounded by limit. Fuzzy
	// matching deliberately stops at the first fuzzyMatchLimit companies;
	// large tenants past that bound are a documented limitation.
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]Company, error)
}

type Service interface {
	// ResolveByDomain looks up the tenant company owning the domain,
	// creating one when absent. Free-email domains resolve to nothing.
	ResolveByDomain(ctx context.Context, domain string) (*Company, error)
	FindByGithubOrg(ctx context.Context, githubOrg string) (*Company, error)
	// FuzzyMatchByName returns the best scored candidate at or above
	// the similarity threshold, or nil.
	FuzzyMatchByName(ctx context.Context, name string) (*FuzzyMatch, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Company, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("not_found")
)
