package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tributaryhq/tributary/internal/dedupe/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	obsmetrics "github.com/tributaryhq/tributary/internal/observability/metrics"
	"github.com/tributaryhq/tributary/internal/orgcontext"
	"go.uber.org/zap"
)

func (s *Service) FindDuplicates(ctx context.Context) ([]domain.Group, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	// seen tracks contact pairs already reported this run, across both
	// strategies, so a pair never yields two groups.
	seen := map[string]struct{}{}
	var groups []domain.Group

	emailGroups, err := s.emailCollisions(ctx, orgID, seen)
	if err != nil {
		return nil, err
	}
	groups = append(groups, emailGroups...)

	identityGroups, err := s.identityCollisions(ctx, orgID, seen)
	if err != nil {
		return nil, err
	}
	groups = append(groups, identityGroups...)

	obsmetrics.DuplicateGroups.Add(float64(len(groups)))
	s.log.Info("duplicate scan finished",
		zap.Int("groups", len(groups)),
	)
	return groups, nil
}

func (s *Service) emailCollisions(ctx context.Context, orgID snowflake.ID, seen map[string]struct{}) ([]domain.Group, error) {
	emails, err := s.repo.DuplicateEmails(ctx, s.db, orgID, domain.GroupLimit)
	if err != nil {
		return nil, err
	}

	var groups []domain.Group
	for _, email := range emails {
		contacts, err := s.repo.ContactsByEmail(ctx, s.db, orgID, email)
		if err != nil {
			return nil, err
		}
		if len(contacts) < 2 {
			continue
		}

		primary := contacts[0]
		shared := []domain.SharedIdentity{{Type: identitydomain.TypeEmail, Value: email}}
		var candidates []domain.Candidate
		for _, dup := range contacts[1:] {
			markSeen(seen, primary.ID, dup.ID)
			candidates = append(candidates, domain.Candidate{
				Contact:    dup,
				Shared:     shared,
				Confidence: 1.00,
			})
		}
		groups = append(groups, domain.Group{
			Primary:    primary,
			Duplicates: candidates,
			Confidence: 1.00,
		})
	}
	return groups, nil
}

func (s *Service) identityCollisions(ctx context.Context, orgID snowflake.ID, seen map[string]struct{}) ([]domain.Group, error) {
	pairs, err := s.repo.DuplicateIdentityPairs(ctx, s.db, orgID, domain.GroupLimit)
	if err != nil {
		return nil, err
	}

	var groups []domain.Group
	for _, pair := range pairs {
		contacts, err := s.repo.ContactsByIdentityPair(ctx, s.db, orgID, pair)
		if err != nil {
			return nil, err
		}
		if len(contacts) < 2 {
			continue
		}

		primary := contacts[0]
		confidence := identitydomain.TypeConfidence(pair.Type)
		shared := []domain.SharedIdentity{{Type: pair.Type, Value: pair.Value}}

		var candidates []domain.Candidate
		for _, dup := range contacts[1:] {
			if isSeen(seen, primary.ID, dup.ID) {
				// Already reported via email collision or an earlier
				// identity type this run.
				continue
			}
			markSeen(seen, primary.ID, dup.ID)
			candidates = append(candidates, domain.Candidate{
				Contact:    dup,
				Shared:     shared,
				Confidence: confidence,
			})
		}
		if len(candidates) == 0 {
			continue
		}
		groups = append(groups, domain.Group{
			Primary:    primary,
			Duplicates: candidates,
			Confidence: confidence,
		})
	}
	return groups, nil
}

func markSeen(seen map[string]struct{}, a, b snowflake.ID) {
	seen[pairKey(a, b)] = struct{}{}
}

func isSeen(seen map[string]struct{}, a, b snowflake.ID) bool {
	_, ok := seen[pairKey(a, b)]
	return ok
}

func pairKey(a, b snowflake.ID) string {
	if b < a {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}
