package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/dedupe/domain"
	obsmetrics "github.com/tributaryhq/tributary/internal/observability/metrics"
	"github.com/tributaryhq/tributary/internal/orgcontext"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) MergeContacts(ctx context.Context, primaryID snowflake.ID, duplicateIDs []snowflake.ID) (domain.MergeResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.MergeResult{}, domain.ErrInvalidOrganization
	}
	if len(duplicateIDs) == 0 {
		return domain.MergeResult{}, domain.ErrNoDuplicates
	}
	for _, dupID := range duplicateIDs {
		if dupID == primaryID {
			return domain.MergeResult{}, domain.ErrPrimaryInDuplicates
		}
	}

	primary, err := s.contacts.FindByID(ctx, s.db, orgID, primaryID)
	if err != nil {
		return domain.MergeResult{}, err
	}
	if primary == nil {
		return domain.MergeResult{}, domain.ErrPrimaryNotFound
	}

	result := domain.MergeResult{}
	for _, dupID := range duplicateIDs {
		if err := s.mergeOne(ctx, orgID, primaryID, dupID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("contact %s: %v", dupID, err))
			continue
		}
		result.Merged++
	}

	obsmetrics.MergedContacts.Add(float64(result.Merged))
	s.log.Info("merge finished",
		zap.String("primary_id", primaryID.String()),
		zap.Int("merged", result.Merged),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// mergeOne folds a single duplicate into the primary inside one
// transaction: partial application is never observable.
func (s *Service) mergeOne(ctx context.Context, orgID, primaryID, dupID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := s.contacts.FindByID(ctx, tx, orgID, dupID)
		if err != nil {
			return err
		}
		if dup == nil {
			return fmt.Errorf("not found in organization")
		}

		primary, err := s.contacts.FindByID(ctx, tx, orgID, primaryID)
		if err != nil {
			return err
		}
		if primary == nil {
			return domain.ErrPrimaryNotFound
		}

		if err := s.engagement.ReassignSignals(ctx, tx, orgID, dupID, primaryID); err != nil {
			return fmt.Errorf("reassign signals: %w", err)
		}
		if err := s.engagement.ReassignActivities(ctx, tx, orgID, dupID, primaryID); err != nil {
			return fmt.Errorf("reassign activities: %w", err)
		}
		if err := s.engagement.ReassignDeals(ctx, tx, orgID, dupID, primaryID); err != nil {
			return fmt.Errorf("reassign deals: %w", err)
		}
		if err := s.engagement.ReassignEnrollments(ctx, tx, orgID, dupID, primaryID); err != nil {
			return fmt.Errorf("reassign enrollments: %w", err)
		}

		if err := s.moveIdentities(ctx, tx, orgID, primaryID, dupID); err != nil {
			return fmt.Errorf("move identities: %w", err)
		}

		if err := s.engagement.MoveTags(ctx, tx, dupID, primaryID); err != nil {
			return fmt.Errorf("move tags: %w", err)
		}

		updates := fieldUnion(primary, dup)
		if primary.CompanyID == nil && dup.CompanyID != nil {
			updates["company_id"] = *dup.CompanyID
		}
		if len(updates) > 0 {
			if err := s.contacts.UpdateFields(ctx, tx, orgID, primaryID, updates); err != nil {
				return fmt.Errorf("field union: %w", err)
			}
		}

		if err := s.contacts.Delete(ctx, tx, orgID, dupID); err != nil {
			return fmt.Errorf("delete duplicate: %w", err)
		}
		return nil
	})
}

// moveIdentities transfers the duplicate's identity rows to the primary.
// A pair the primary already owns is discarded rather than erroring: the
// primary holds that fact already.
func (s *Service) moveIdentities(ctx context.Context, tx *gorm.DB, orgID, primaryID, dupID snowflake.ID) error {
	dupIdentities, err := s.identities.ListByContact(ctx, tx, orgID, dupID)
	if err != nil {
		return err
	}
	if len(dupIdentities) == 0 {
		return nil
	}

	primaryIdentities, err := s.identities.ListByContact(ctx, tx, orgID, primaryID)
	if err != nil {
		return err
	}
	owned := make(map[string]struct{}, len(primaryIdentities))
	for _, identity := range primaryIdentities {
		owned[string(identity.Type)+":"+identity.Value] = struct{}{}
	}

	for _, identity := range dupIdentities {
		if _, ok := owned[string(identity.Type)+":"+identity.Value]; ok {
			if err := s.identities.Delete(ctx, tx, identity.ID); err != nil {
				return err
			}
			continue
		}
		if err := s.identities.UpdateOwner(ctx, tx, identity.ID, primaryID); err != nil {
			return err
		}
	}
	return nil
}

// fieldUnion adopts the duplicate's scalar fields only where the primary
// is empty. The primary's data always wins when present.
func fieldUnion(primary, dup *contactdomain.Contact) map[string]any {
	updates := map[string]any{}
	for _, field := range contactdomain.MergeableFields {
		if primary.FieldValue(field) != "" {
			continue
		}
		if value := dup.FieldValue(field); value != "" {
			updates[field] = value
		}
	}
	return updates
}
