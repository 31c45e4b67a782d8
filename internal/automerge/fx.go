package automerge

import (
	"github.com/tributaryhq/tributary/internal/automerge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("automerge.service",
	fx.Provide(service.NewLogNotifier),
	fx.Provide(service.New),
	fx.Invoke(service.RunSweeper),
)
