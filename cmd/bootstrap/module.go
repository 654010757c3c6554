package bootstrap

import (
	"coupon-engine/cmd/bootstrap/components"
	"coupon-engine/internal/pkg/config"

	"go.uber.org/fx"
)

func Module(cfg config.Config) fx.Option {
	return fx.Options(
		ConfigModule(cfg),
		LoggerModule,
		JWTModule,
		persistence(cfg),
		cache(cfg),
		components.UseCaseModule,
		components.HandlerModule,
	)
}

func persistence(cfg config.Config) fx.Option {
	if cfg.Store.Driver == config.StoreDriverMemory {
		return components.MemoryPersistenceModule
	}
	return fx.Options(DBModule, components.PostgresPersistenceModule)
}

func cache(cfg config.Config) fx.Option {
	if cfg.Redis.Enabled {
		return fx.Options(RedisModule, components.CacheModule)
	}
	return components.CacheModule
}
