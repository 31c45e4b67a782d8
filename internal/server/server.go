package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tributaryhq/tributary/internal/automerge"
	automergedomain "github.com/tributaryhq/tributary/internal/automerge/domain"
	"github.com/tributaryhq/tributary/internal/cache"
	"github.com/tributaryhq/tributary/internal/company"
	companydomain "github.com/tributaryhq/tributary/internal/company/domain"
	"github.com/tributaryhq/tributary/internal/config"
	"github.com/tributaryhq/tributary/internal/contact"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/dedupe"
	dedupedomain "github.com/tributaryhq/tributary/internal/dedupe/domain"
	"github.com/tributaryhq/tributary/internal/engagement"
	"github.com/tributaryhq/tributary/internal/identity"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	"github.com/tributaryhq/tributary/internal/organization"
)

var Module = fx.Module("http.server",
	cache.Module,
	organization.Module,
	contact.Module,
	company.Module,
	engagement.Module,
	identity.Module,
	dedupe.Module,
	automerge.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	contactSvc   contactdomain.Service
	companySvc   companydomain.Service
	identitySvc  identitydomain.Service
	dedupeSvc    dedupedomain.Service
	automergeSvc automergedomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	ContactSvc   contactdomain.Service
	CompanySvc   companydomain.Service
	IdentitySvc  identitydomain.Service
	DedupeSvc    dedupedomain.Service
	AutomergeSvc automergedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		contactSvc:   p.ContactSvc,
		companySvc:   p.CompanySvc,
		identitySvc:  p.IdentitySvc,
		dedupeSvc:    p.DedupeSvc,
		automergeSvc: p.AutomergeSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", OrgRequired())

	v1.POST("/identity/resolve", s.ResolveIdentity)

	v1.POST("/contacts", s.CreateContact)
	v1.GET("/contacts/:id", s.GetContact)
	v1.PATCH("/contacts/:id", s.UpdateContact)
	v1.DELETE("/contacts/:id", s.DeleteContact)
	v1.GET("/contacts/:id/graph", s.GetIdentityGraph)
	v1.POST("/contacts/:id/auto-merge", s.AutoMergeContact)
	v1.POST("/contacts/merge", s.MergeContacts)

	v1.GET("/companies/:id", s.GetCompany)

	v1.GET("/duplicates", s.ListDuplicates)
	v1.GET("/auto-merge/stats", s.AutoMergeStats)
}
