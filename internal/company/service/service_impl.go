package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/tributaryhq/tributary/internal/company/domain"
	obsmetrics "github.com/tributaryhq/tributary/internal/observability/metrics"
	"github.com/tributaryhq/tributary/internal/orgcontext"
	"github.com/tributaryhq/tributary/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fuzzyMatchLimit bounds the candidate scan for name matching. Tenants
// with more companies than this only match within the oldest slice.
const fuzzyMatchLimit = 500

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) ResolveByDomain(ctx context.Context, dom string) (*domain.Company, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	dom = strings.ToLower(strings.TrimSpace(dom))
	if dom == "" || domain.IsFreeEmailDomain(dom) {
		return nil, nil
	}

	existing, err := s.repo.FindByDomain(ctx, s.db, orgID, dom)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		Name:         nameFromDomain(dom),
		Domain:       dom,
		Website:      "https://" + dom,
		CustomFields: datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &company); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the creation race; the winner owns the domain now.
			return s.repo.FindByDomain(ctx, s.db, orgID, dom)
		}
		return nil, err
	}

	obsmetrics.CompaniesCreated.Inc()
	s.log.Info("company auto-created from domain",
		zap.String("domain", dom),
		zap.String("company_id", company.ID.String()),
	)
	return &company, nil
}

func (s *Service) FindByGithubOrg(ctx context.Context, githubOrg string) (*domain.Company, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.FindByGithubOrg(ctx, s.db, orgID, githubOrg)
}

func (s *Service) FuzzyMatchByName(ctx context.Context, name string) (*domain.FuzzyMatch, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	companies, err := s.repo.List(ctx, s.db, orgID, fuzzyMatchLimit)
	if err != nil {
		return nil, err
	}

	var best *domain.FuzzyMatch
	for i := range companies {
		score := domain.NameSimilarity(name, companies[i].Name)
		if companies[i].GithubOrg != "" {
			if orgScore := domain.NameSimilarity(name, companies[i].GithubOrg); orgScore > score {
				score = orgScore
			}
		}
		if score < domain.SimilarityThreshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &domain.FuzzyMatch{Company: companies[i], Score: score}
		}
	}
	return best, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Company, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	company, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// nameFromDomain derives a display name from the domain's first label:
// "acme.io" becomes "Acme".
func nameFromDomain(dom string) string {
	label := dom
	if idx := strings.IndexByte(label, '.'); idx > 0 {
		label = label[:idx]
	}
	runes := []rune(label)
	if len(runes) == 0 {
		return dom
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
