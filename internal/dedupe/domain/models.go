package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	"gorm.io/gorm"
)

// groupLimit caps each detection strategy's result set to bound cost.
const GroupLimit = 50

// SharedIdentity is one fact two contacts have in common.
type SharedIdentity struct {
	Type  identitydomain.IdentityType `json:"type"`
	Value string                      `json:"value"`
}

// Candidate is one suspected duplicate of a group's primary.
type Candidate struct {
	Contact    contactdomain.Contact `json:"contact"`
	Shared     []SharedIdentity      `json:"shared_identities"`
	Confidence float64               `json:"confidence"`
}

// Group is a primary contact plus its suspected duplicates. Derived on
// demand, never persisted.
type Group struct {
	Primary    contactdomain.Contact `json:"primary"`
	Duplicates []Candidate           `json:"duplicates"`
	Confidence float64               `json:"confidence"`
}

// MergeResult reports a multi-duplicate merge: successes accumulate even
// when siblings fail.
type MergeResult struct {
	Merged int      `json:"merged"`
	Errors []string `json:"errors"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrPrimaryNotFound     = errors.New("primary_not_found")
	ErrPrimaryInDuplicates = errors.New("primary_in_duplicates")
	ErrNoDuplicates        = errors.New("no_duplicates")
)

// Repository holds the detector's collision queries.
type Repository interface {
	// DuplicateEmails returns emails shared by more than one contact,
	// capped at limit.
	DuplicateEmails(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]string, error)
	// ContactsByEmail returns the contacts holding the email, oldest first.
	ContactsByEmail(ctx context.Context, db *gorm.DB, orgID snowflake.ID, email string) ([]contactdomain.Contact, error)
	// DuplicateIdentityPairs returns (type, value) pairs owned by more
	// than one contact, capped at limit. The unique index normally makes
	// this empty; it guards data predating the constraint.
	DuplicateIdentityPairs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]identitydomain.Pair, error)
	ContactsByIdentityPair(ctx context.Context, db *gorm.DB, orgID snowflake.ID, pair identitydomain.Pair) ([]contactdomain.Contact, error)
}

type Service interface {
	// FindDuplicates surfaces candidate groups for manual or automatic
	// merging. Groups from the two strategies never double-count a pair.
	FindDuplicates(ctx context.Context) ([]Group, error)
	// MergeContacts folds each duplicate into the primary, one atomic
	// transaction per duplicate. One duplicate's failure does not abort
	// the others.
	MergeContacts(ctx context.Context, primaryID snowflake.ID, duplicateIDs []snowflake.ID) (MergeResult, error)
}
