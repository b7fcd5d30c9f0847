package bootstrap

import (
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

// NewJWTService validates the storefront's customer tokens.
func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret, jwt.Options{
		Duration: cfg.JWT.Duration,
		Issuer:   cfg.JWT.Issuer,
		Leeway:   cfg.JWT.Leeway,
	})
}
