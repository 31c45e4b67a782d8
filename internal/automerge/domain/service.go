package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	organizationdomain "github.com/tributaryhq/tributary/internal/organization/domain"
)

// Stats summarizes a tenant's auto-merge activity from its capped
// audit trail.
type Stats struct {
	TotalAutoMerges int                                  `json:"total_auto_merges"`
	Last24h         int                                  `json:"last_24h"`
	RecentMerges    []organizationdomain.AutoMergeRecord `json:"recent_merges"`
}

// Notifier is told about every automatic merge so a human can audit it.
type Notifier interface {
	AutoMergePerformed(ctx context.Context, record organizationdomain.AutoMergeRecord)
}

type Service interface {
	// MergeIfHighConfidence opportunistically merges the resolved
	// contact with a single overlapping contact when the shared
	// identities are trusted enough. Returns the surviving contact id,
	// which is the input id whenever no merge happened.
	MergeIfHighConfidence(ctx context.Context, contactID snowflake.ID, meta identitydomain.SignalInput) (snowflake.ID, error)
	Stats(ctx context.Context) (Stats, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
)
