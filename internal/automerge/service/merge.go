package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/tributaryhq/tributary/internal/automerge/domain"
	"github.com/tributaryhq/tributary/internal/cache"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	obsmetrics "github.com/tributaryhq/tributary/internal/observability/metrics"
	organizationdomain "github.com/tributaryhq/tributary/internal/organization/domain"
	"github.com/tributaryhq/tributary/internal/orgcontext"
)

const recentMergesShown = 10

func (s *Service) MergeIfHighConfidence(ctx context.Context, contactID snowflake.ID, meta identitydomain.SignalInput) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return contactID, domain.ErrInvalidOrganization
	}

	pairs, err := s.candidatePairs(ctx, orgID, contactID, meta)
	if err != nil {
		return contactID, err
	}
	if len(pairs) == 0 {
		return contactID, nil
	}

	owners, err := s.identities.FindOwnersOfPairs(ctx, s.db, orgID, pairs)
	if err != nil {
		return contactID, err
	}

	// Identity rows held by anyone other than the resolved contact,
	// keyed by owner, keeping the strongest identity type per owner.
	overlap := map[snowflake.ID][]identitydomain.Identity{}
	for _, id := range owners {
		if id.ContactID == contactID {
			continue
		}
		overlap[id.ContactID] = append(overlap[id.ContactID], id)
	}

	switch len(overlap) {
	case 0:
		return contactID, nil
	case 1:
	default:
		// Three or more contacts claiming the same identities is an
		// unmodeled state; leave it for a human.
		s.log.Warn("auto-merge skipped, ambiguous overlap",
			zap.String("contact_id", contactID.String()),
			zap.Int("claimants", len(overlap)))
		obsmetrics.AutoMerges.WithLabelValues("ambiguous").Inc()
		return contactID, nil
	}

	var otherID snowflake.ID
	var shared []identitydomain.Identity
	for id, ids := range overlap {
		otherID, shared = id, ids
	}

	confidence := 0.0
	for _, id := range shared {
		if c := identitydomain.TypeConfidence(id.Type); c > confidence {
			confidence = c
		}
	}
	if confidence < s.threshold {
		obsmetrics.AutoMerges.WithLabelValues("low_confidence").Inc()
		return contactID, nil
	}

	key := cache.PairKey(contactID, otherID)
	active, err := s.cooldown.Active(ctx, key)
	if err != nil {
		return contactID, err
	}
	if active {
		obsmetrics.AutoMerges.WithLabelValues("cooldown").Inc()
		return contactID, nil
	}

	resolvedContact, err := s.contacts.FindByID(ctx, s.db, orgID, contactID)
	if err != nil {
		return contactID, err
	}
	otherContact, err := s.contacts.FindByID(ctx, s.db, orgID, otherID)
	if err != nil {
		return contactID, err
	}
	if resolvedContact == nil || otherContact == nil {
		// One side vanished between the overlap scan and now.
		if err := s.cooldown.Set(ctx, key, s.cooldownTTL); err != nil {
			return contactID, err
		}
		obsmetrics.AutoMerges.WithLabelValues("failed").Inc()
		return contactID, nil
	}

	// Absorbing the only contact a company has would leave it orphaned
	// for no data gain, whichever side survives.
	for _, c := range []*contactdomain.Contact{resolvedContact, otherContact} {
		sole, err := s.soleCompanyContact(ctx, orgID, c)
		if err != nil {
			return contactID, err
		}
		if sole {
			if err := s.cooldown.Set(ctx, key, s.cooldownTTL); err != nil {
				return contactID, err
			}
			obsmetrics.AutoMerges.WithLabelValues("sole_contact").Inc()
			return contactID, nil
		}
	}

	primary, dup, err := s.electPrimary(ctx, orgID, contactID, otherID)
	if err != nil {
		return contactID, err
	}

	primaryContact, dupContact := resolvedContact, otherContact
	if primary == otherID {
		primaryContact, dupContact = otherContact, resolvedContact
	}

	result, err := s.merger.MergeContacts(ctx, primary, []snowflake.ID{dup})
	if err != nil || result.Merged == 0 {
		// The merge failed outright; back off so the next signal for
		// this pair does not immediately retry.
		if cerr := s.cooldown.Set(ctx, key, s.cooldownTTL); cerr != nil {
			return contactID, cerr
		}
		obsmetrics.AutoMerges.WithLabelValues("failed").Inc()
		if err != nil {
			return contactID, err
		}
		s.log.Warn("auto-merge failed",
			zap.String("primary_id", primary.String()),
			zap.String("duplicate_id", dup.String()),
			zap.Strings("errors", result.Errors))
		return contactID, nil
	}

	record := organizationdomain.AutoMergeRecord{
		PrimaryID:        primary.String(),
		PrimaryName:      primaryContact.DisplayName(),
		MergedID:         dup.String(),
		MergedName:       dupContact.DisplayName(),
		Confidence:       confidence,
		SharedIdentities: describeIdentities(shared),
		MergedAt:         s.clock.Now(),
	}
	if err := s.orgs.AppendAutoMergeRecord(ctx, s.db, orgID, record); err != nil {
		s.log.Error("auto-merge audit append failed", zap.Error(err))
	}
	s.notifier.AutoMergePerformed(ctx, record)

	if err := s.cooldown.Set(ctx, key, s.cooldownTTL); err != nil {
		return primary, err
	}

	s.log.Info("auto-merged contacts",
		zap.String("primary_id", primary.String()),
		zap.String("duplicate_id", dup.String()),
		zap.Float64("confidence", confidence))
	obsmetrics.AutoMerges.WithLabelValues("merged").Inc()
	return primary, nil
}

// candidatePairs is the union of the contact's stored identities and the
// identities implied by the triggering signal.
func (s *Service) candidatePairs(ctx context.Context, orgID, contactID snowflake.ID, meta identitydomain.SignalInput) ([]identitydomain.Pair, error) {
	stored, err := s.identities.ListByContact(ctx, s.db, orgID, contactID)
	if err != nil {
		return nil, err
	}
	seen := map[identitydomain.Pair]struct{}{}
	var pairs []identitydomain.Pair
	for _, id := range stored {
		p := identitydomain.Pair{Type: id.Type, Value: id.Value}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}
	for _, p := range meta.Normalized().Pairs() {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

// electPrimary keeps the contact with more engagement; on a tie the
// resolved contact survives.
func (s *Service) electPrimary(ctx context.Context, orgID, resolved, other snowflake.ID) (primary, dup snowflake.ID, err error) {
	resolvedN, err := s.engagement.CountSignalsByContact(ctx, s.db, orgID, resolved)
	if err != nil {
		return 0, 0, err
	}
	otherN, err := s.engagement.CountSignalsByContact(ctx, s.db, orgID, other)
	if err != nil {
		return 0, 0, err
	}
	if otherN > resolvedN {
		return other, resolved, nil
	}
	return resolved, other, nil
}

func (s *Service) soleCompanyContact(ctx context.Context, orgID snowflake.ID, c *contactdomain.Contact) (bool, error) {
	if c.CompanyID == nil {
		return false, nil
	}
	n, err := s.contacts.CountByCompany(ctx, s.db, orgID, *c.CompanyID)
	if err != nil {
		return false, err
	}
	return n <= 1, nil
}

func describeIdentities(ids []identitydomain.Identity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, fmt.Sprintf("%s:%s", id.Type, id.Value))
	}
	sort.Strings(out)
	return out
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Stats{}, domain.ErrInvalidOrganization
	}
	history, err := s.orgs.AutoMergeHistory(ctx, s.db, orgID)
	if err != nil {
		return domain.Stats{}, err
	}

	cutoff := s.clock.Now().Add(-24 * time.Hour)
	stats := domain.Stats{TotalAutoMerges: len(history)}
	for _, r := range history {
		if r.MergedAt.After(cutoff) {
			stats.Last24h++
		}
	}

	// Newest first, capped.
	recent := make([]organizationdomain.AutoMergeRecord, len(history))
	copy(recent, history)
	sort.Slice(recent, func(i, j int) bool { return recent[i].MergedAt.After(recent[j].MergedAt) })
	if len(recent) > recentMergesShown {
		recent = recent[:recentMergesShown]
	}
	stats.RecentMerges = recent
	return stats, nil
}
