package service

import (
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/dedupe/domain"
	engagementdomain "github.com/tributaryhq/tributary/internal/engagement/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	Contacts   contactdomain.Repository
	Identities identitydomain.Repository
	Engagement engagementdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	contacts   contactdomain.Repository
	identities identitydomain.Repository
	engagement engagementdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("dedupe.service"),
		repo:       p.Repo,
		contacts:   p.Contacts,
		identities: p.Identities,
		engagement: p.Engagement,
	}
}
