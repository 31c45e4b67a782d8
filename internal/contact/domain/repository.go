package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contact *Contact) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Contact, error)
	FindByEmail(ctx context.Context, db *gorm.DB, orgID snowflake.ID, email string) (*Contact, error)
	// FindByGithubField matches the plain github column, the legacy
	// fallback for contacts created before identity rows existed.
	FindByGithubField(ctx context.Context, db *gorm.DB, orgID snowflake.ID, handle string) (*Contact, error)
	UpdateFields(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	CountByCompany(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (int64, error)
}
