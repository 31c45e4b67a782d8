package migration

import (
	companydomain "github.com/tributaryhq/tributary/internal/company/domain"
	"github.com/tributaryhq/tributary/internal/config"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	engagementdomain "github.com/tributaryhq/tributary/internal/engagement/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	organizationdomain "github.com/tributaryhq/tributary/internal/organization/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite/mysql dev mode: let gorm own the schema.
			return conn.AutoMigrate(
				&organizationdomain.Organization{},
				&companydomain.Company{},
				&contactdomain.Contact{},
				&identitydomain.Identity{},
				&engagementdomain.Signal{},
				&engagementdomain.Activity{},
				&engagementdomain.Deal{},
				&engagementdomain.EmailEnrollment{},
				&engagementdomain.Tag{},
				&engagementdomain.ContactTag{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
