package identity

import (
	"github.com/tributaryhq/tributary/internal/identity/repository"
	"github.com/tributaryhq/tributary/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
