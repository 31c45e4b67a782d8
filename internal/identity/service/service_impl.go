package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/tributaryhq/tributary/internal/company/domain"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/identity/domain"
	obsmetrics "github.com/tributaryhq/tributary/internal/observability/metrics"
	"github.com/tributaryhq/tributary/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cascade confidence per rule. Exact email always outranks handle
// matches, which outrank company-level matches, which outrank fuzzy
// name matches.
const (
	confidenceEmailExact    = 1.00
	confidenceEmailIdentity = 1.00
	confidenceGithub        = 0.95
	confidenceNpm           = 0.95
	confidenceGithubOrg     = 0.85
	confidenceDomain        = 0.80
	confidenceFuzzyName     = 0.50
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Contacts  contactdomain.Repository
	Companies companydomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	contacts  contactdomain.Repository
	companies companydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("identity.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		contacts:  p.Contacts,
		companies: p.Companies,
	}
}

// contactMatch is one resolver's answer for the contact target.
type contactMatch struct {
	contact    *contactdomain.Contact
	confidence float64
}

// contactResolver is one rule in the cascade, ordered by position.
type contactResolver struct {
	source  string
	resolve func(ctx context.Context, orgID snowflake.ID, in domain.SignalInput) (*contactdomain.Contact, error)
	// confidence assigned when the rule matches
	confidence float64
}

type companyMatch struct {
	company    *companydomain.Company
	confidence float64
}

type companyResolver struct {
	source     string
	resolve    func(ctx context.Context, in domain.SignalInput) (*companydomain.Company, error)
	confidence float64
}

func (s *Service) contactResolvers() []contactResolver {
	return []contactResolver{
		{
			source:     "email_exact",
			confidence: confidenceEmailExact,
			resolve: func(ctx context.Context, orgID snowflake.ID, in domain.SignalInput) (*contactdomain.Contact, error) {
				if in.Email == "" {
					return nil, nil
				}
				return s.contacts.FindByEmail(ctx, s.db, orgID, in.Email)
			},
		},
		{
			source:     "github_identity",
			confidence: confidenceGithub,
			resolve: func(ctx context.Context, orgID snowflake.ID, in domain.SignalInput) (*contactdomain.Contact, error) {
				return s.contactByIdentity(ctx, orgID, domain.TypeGithub, in.GithubHandle)
			},
		},
		{
			source:     "github_field",
			confidence: confidenceGithub,
			resolve: func(ctx context.Context, orgID snowflake.ID, in domain.SignalInput) (*contactdomain.Contact, error) {
				if in.GithubHandle == "" {
					return nil, nil
				}
				return s.contacts.FindByGithubField(ctx, s.db, orgID, in.GithubHandle)
			},
		},
		{
			source:     "npm_identity",
			confidence: confidenceNpm,
			resolve: func(ctx context.Context, orgID snowflake.ID, in domain.SignalInput) (*contactdomain.Contact, error) {
				return s.contactByIdentity(ctx, orgID, domain.TypeNpm, in.NpmHandle)
			},
		},
		{
			source:     "email_identity",
			confidence: confidenceEmailIdentity,
			resolve: func(ctx context.Context, orgID snowflake.ID, in domain.SignalInput) (*contactdomain.Contact, error) {
				return s.contactByIdentity(ctx, orgID, domain.TypeEmail, in.Email)
			},
		},
	}
}

func (s *Service) companyResolvers() []companyResolver {
	return []companyResolver{
		{
			source:     "email_domain",
			confidence: confidenceDomain,
			resolve: func(ctx context.Context, in domain.SignalInput) (*companydomain.Company, error) {
				dom := in.EmailDomain()
				if dom == "" {
					return nil, nil
				}
				return s.companies.ResolveByDomain(ctx, dom)
			},
		},
		{
			source:     "company_domain",
			confidence: confidenceDomain,
			resolve: func(ctx context.Context, in domain.SignalInput) (*companydomain.Company, error) {
				if in.CompanyDomain == "" {
					return nil, nil
				}
				return s.companies.ResolveByDomain(ctx, in.CompanyDomain)
			},
		},
		{
			source:     "github_org",
			confidence: confidenceGithubOrg,
			resolve: func(ctx context.Context, in domain.SignalInput) (*companydomain.Company, error) {
				if in.GithubOrg == "" {
					return nil, nil
				}
				return s.companies.FindByGithubOrg(ctx, in.GithubOrg)
			},
		},
		{
			source:     "fuzzy_name",
			confidence: confidenceFuzzyName,
			resolve: func(ctx context.Context, in domain.SignalInput) (*companydomain.Company, error) {
				if in.CompanyName == "" {
					return nil, nil
				}
				match, err := s.companies.FuzzyMatchByName(ctx, in.CompanyName)
				if err != nil || match == nil {
					return nil, err
				}
				return &match.Company, nil
			},
		},
	}
}

func (s *Service) Resolve(ctx context.Context, in domain.SignalInput) (domain.Resolution, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Resolution{}, domain.ErrInvalidOrganization
	}

	in = in.Normalized()

	var (
		bestContact contactMatch
		source      string
	)
	for _, resolver := range s.contactResolvers() {
		contact, err := resolver.resolve(ctx, orgID, in)
		if err != nil {
			return domain.Resolution{}, err
		}
		if contact == nil {
			continue
		}
		if bestContact.contact == nil || resolver.confidence > bestContact.confidence {
			bestContact = contactMatch{contact: contact, confidence: resolver.confidence}
			source = resolver.source
		}
		if bestContact.confidence >= confidenceEmailExact {
			break
		}
	}

	var bestCompany companyMatch
	for _, resolver := range s.companyResolvers() {
		company, err := resolver.resolve(ctx, in)
		if err != nil {
			return domain.Resolution{}, err
		}
		if company == nil {
			continue
		}
		if bestCompany.company == nil || resolver.confidence > bestCompany.confidence {
			bestCompany = companyMatch{company: company, confidence: resolver.confidence}
		}
	}

	resolution := domain.Resolution{Source: source}

	switch {
	case bestContact.contact != nil:
		resolution.ContactID = bestContact.contact.ID
		resolution.Confidence = bestContact.confidence

		// Link a separately resolved company, but only into an empty
		// slot: an existing association is never overwritten here.
		if bestContact.contact.CompanyID == nil && bestCompany.company != nil {
			companyID := bestCompany.company.ID
			err := s.contacts.UpdateFields(ctx, s.db, orgID, bestContact.contact.ID, map[string]any{
				"company_id": companyID,
			})
			if err != nil {
				return domain.Resolution{}, err
			}
		}

	case in.Sufficient():
		contact, err := s.createContact(ctx, orgID, in, bestCompany.company)
		if err != nil {
			return domain.Resolution{}, err
		}
		resolution.ContactID = contact.ID
		resolution.Confidence = newContactConfidence(in)
		resolution.Source = "new_contact"
		resolution.IsNew = true
		obsmetrics.ContactsCreated.Inc()
	}

	if bestCompany.company != nil {
		resolution.CompanyID = bestCompany.company.ID
		if resolution.ContactID == 0 {
			resolution.Confidence = bestCompany.confidence
			resolution.Source = "company_only"
		}
	}

	if resolution.ContactID != 0 {
		stored, err := s.storeIdentities(ctx, orgID, resolution.ContactID, in)
		if err != nil {
			return domain.Resolution{}, err
		}
		resolution.IdentitiesStored = stored
	}

	if resolution.Source == "" {
		resolution.Source = "none"
	}
	obsmetrics.Resolutions.WithLabelValues(resolution.Source).Inc()

	return resolution, nil
}

func (s *Service) contactByIdentity(ctx context.Context, orgID snowflake.ID, t domain.IdentityType, value string) (*contactdomain.Contact, error) {
	if value == "" {
		return nil, nil
	}
	identity, err := s.repo.FindByTypeValue(ctx, s.db, orgID, t, value)
	if err != nil || identity == nil {
		return nil, err
	}
	return s.contacts.FindByID(ctx, s.db, orgID, identity.ContactID)
}

func (s *Service) createContact(ctx context.Context, orgID snowflake.ID, in domain.SignalInput, company *companydomain.Company) (*contactdomain.Contact, error) {
	now := time.Now().UTC()
	contact := contactdomain.Contact{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Github:       in.GithubHandle,
		Npm:          in.NpmHandle,
		Avatar:       in.Avatar,
		CustomFields: datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if company != nil {
		companyID := company.ID
		contact.CompanyID = &companyID
	}
	if err := s.contacts.Insert(ctx, s.db, &contact); err != nil {
		return nil, err
	}
	s.log.Info("contact auto-created from signal",
		zap.String("contact_id", contact.ID.String()),
		zap.String("email", contact.Email),
		zap.String("github", contact.Github),
	)
	return &contact, nil
}

// storeIdentities persists every identity implied by the input. A pair
// already owned by another contact is skipped silently: that is the
// expected cross-contact overlap handled by the merge flow.
func (s *Service) storeIdentities(ctx context.Context, orgID, contactID snowflake.ID, in domain.SignalInput) (int, error) {
	stored := 0
	now := time.Now().UTC()
	for _, pair := range in.Pairs() {
		identity := domain.Identity{
			ID:         s.genID.Generate(),
			OrgID:      orgID,
			ContactID:  contactID,
			Type:       pair.Type,
			Value:      strings.ToLower(pair.Value),
			Confidence: domain.TypeConfidence(pair.Type),
			Verified:   pair.Type == domain.TypeEmail,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err := s.repo.Upsert(ctx, s.db, &identity)
		if err != nil {
			if errors.Is(err, domain.ErrOwnedByOtherContact) {
				s.log.Debug("identity pair owned by another contact",
					zap.String("type", string(pair.Type)),
					zap.String("value", pair.Value),
				)
				continue
			}
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func (s *Service) GetGraph(ctx context.Context, contactID snowflake.ID) (domain.Graph, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Graph{}, domain.ErrInvalidOrganization
	}

	contact, err := s.contacts.FindByID(ctx, s.db, orgID, contactID)
	if err != nil {
		return domain.Graph{}, err
	}
	if contact == nil {
		return domain.Graph{}, domain.ErrNotFound
	}

	graph := domain.Graph{
		Contact: domain.GraphContact{
			ID:     contact.ID,
			Name:   contact.DisplayName(),
			Email:  contact.Email,
			Github: contact.Github,
			Npm:    contact.Npm,
		},
	}

	if contact.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *contact.CompanyID)
		if err != nil && !errors.Is(err, companydomain.ErrNotFound) {
			return domain.Graph{}, err
		}
		if company != nil {
			graph.Company = &domain.GraphCompany{
				ID:     company.ID,
				Name:   company.Name,
				Domain: company.Domain,
			}
		}
	}

	identities, err := s.repo.ListByContact(ctx, s.db, orgID, contactID)
	if err != nil {
		return domain.Graph{}, err
	}
	sort.SliceStable(identities, func(i, j int) bool {
		return identities[i].Confidence > identities[j].Confidence
	})
	graph.Identities = identities

	return graph, nil
}

func newContactConfidence(in domain.SignalInput) float64 {
	if in.Email != "" {
		return confidenceEmailExact
	}
	return confidenceGithub
}
