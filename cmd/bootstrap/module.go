package bootstrap

import (
	"github.com/enviofleett/smallchops-09-sub001/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	JWTModule,
	BackendModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
	BrokerModule,
)
