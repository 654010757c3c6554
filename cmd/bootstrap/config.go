package bootstrap

import (
	"coupon-engine/internal/pkg/config"

	"go.uber.org/fx"
)

// ConfigModule supplies the configuration loaded before the graph is built, since
// the store driver and the cache switch decide which modules are wired.
func ConfigModule(cfg config.Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
	)
}
