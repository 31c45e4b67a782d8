package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// IdentityType enumerates the third-party account types an identity can
// assert about a contact.
type IdentityType string

const (
	TypeEmail    IdentityType = "EMAIL"
	TypeGithub   IdentityType = "GITHUB"
	TypeNpm      IdentityType = "NPM"
	TypeDomain   IdentityType = "DOMAIN"
	TypeLinkedIn IdentityType = "LINKEDIN"
	TypeTwitter  IdentityType = "TWITTER"
)

// Identity is a (type, value) fact asserted about a contact. The pair is
// globally unique: ownership of a value is never shared, a conflict on
// insert means the value belongs to another contact and is resolved by
// merge, not duplication.
type Identity struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organization_id"`
	ContactID  snowflake.ID `gorm:"not null;index" json:"contact_id"`
	Type       IdentityType `gorm:"type:text;not null;uniqueIndex:ux_identities_type_value,priority:1" json:"type"`
	Value      string       `gorm:"type:text;not null;uniqueIndex:ux_identities_type_value,priority:2" json:"value"`
	Confidence float64      `gorm:"not null;default:0" json:"confidence"`
	Verified   bool         `gorm:"not null;default:false" json:"verified"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Identity) TableName() string { return "identities" }

// TypeConfidence is the trust assigned to a match through the given
// identity type, shared by the duplicate detector and the auto-merge
// controller.
func TypeConfidence(t IdentityType) float64 {
	switch t {
	case TypeEmail:
		return 1.00
	case TypeGithub, TypeNpm:
		return 0.95
	default:
		return 0.50
	}
}

var (
	// ErrOwnedByOtherContact is the distinguishable upsert outcome for a
	// (type, value) pair already claimed by a different contact. Callers
	// treat it as normal: the shared value is resolved by merge, not here.
	ErrOwnedByOtherContact = errors.New("identity_owned_by_other_contact")

	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("not_found")
)

// Pair is a bare (type, value) identity claim.
type Pair struct {
	Type  IdentityType
	Value string
}

type Repository interface {
	// Upsert inserts or refreshes an identity row; returns
	// ErrOwnedByOtherContact when the pair belongs to someone else.
	Upsert(ctx context.Context, db *gorm.DB, identity *Identity) error
	FindByTypeValue(ctx context.Context, db *gorm.DB, orgID snowflake.ID, t IdentityType, value string) (*Identity, error)
	ListByContact(ctx context.Context, db *gorm.DB, orgID, contactID snowflake.ID) ([]Identity, error)
	// FindOwnersOfPairs returns every identity row in the tenant matching
	// any of the given pairs, across all contacts.
	FindOwnersOfPairs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, pairs []Pair) ([]Identity, error)
	UpdateOwner(ctx context.Context, db *gorm.DB, id, contactID snowflake.ID) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
