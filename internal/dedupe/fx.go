package dedupe

import (
	"github.com/tributaryhq/tributary/internal/dedupe/repository"
	"github.com/tributaryhq/tributary/internal/dedupe/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dedupe.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
