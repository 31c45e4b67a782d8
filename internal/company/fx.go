package company

import (
	"github.com/tributaryhq/tributary/internal/company/repository"
	"github.com/tributaryhq/tributary/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
