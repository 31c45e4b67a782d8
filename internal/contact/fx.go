package contact

import (
	"github.com/tributaryhq/tributary/internal/contact/repository"
	"github.com/tributaryhq/tributary/internal/contact/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contact.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
