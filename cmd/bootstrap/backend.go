package bootstrap

import (
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/backend"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"go.uber.org/fx"
)

var BackendModule = fx.Module("backend",
	fx.Provide(
		fx.Annotate(
			NewBackendClient,
			fx.As(new(shared.OrderBackend)),
		),
	),
)

func NewBackendClient(cfg config.Config) *backend.Client {
	return backend.NewClient(cfg.Backend)
}
