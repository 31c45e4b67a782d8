package engagement

import (
	"github.com/tributaryhq/tributary/internal/engagement/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("engagement",
	fx.Provide(repository.Provide),
)
