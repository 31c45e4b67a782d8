package service

import (
	"time"

	"github.com/tributaryhq/tributary/internal/automerge/domain"
	"github.com/tributaryhq/tributary/internal/cache"
	"github.com/tributaryhq/tributary/internal/clock"
	"github.com/tributaryhq/tributary/internal/config"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	dedupedomain "github.com/tributaryhq/tributary/internal/dedupe/domain"
	engagementdomain "github.com/tributaryhq/tributary/internal/engagement/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	organizationdomain "github.com/tributaryhq/tributary/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Config     config.Config
	Clock      clock.Clock
	Cooldown   cache.Cooldown
	Notifier   domain.Notifier
	Merger     dedupedomain.Service
	Contacts   contactdomain.Repository
	Identities identitydomain.Repository
	Engagement engagementdomain.Repository
	Orgs       organizationdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	threshold   float64
	cooldown    cache.Cooldown
	cooldownTTL time.Duration
	clock       clock.Clock
	notifier    domain.Notifier
	merger      dedupedomain.Service
	contacts    contactdomain.Repository
	identities  identitydomain.Repository
	engagement  engagementdomain.Repository
	orgs        organizationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("automerge.service"),
		threshold:   p.Config.AutoMergeThreshold,
		cooldown:    p.Cooldown,
		cooldownTTL: p.Config.CooldownTTL,
		clock:       p.Clock,
		notifier:    p.Notifier,
		merger:      p.Merger,
		contacts:    p.Contacts,
		identities:  p.Identities,
		engagement:  p.Engagement,
		orgs:        p.Orgs,
	}
}
