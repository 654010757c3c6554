package components

import (
	"coupon-engine/internal/infra/cache"
	"coupon-engine/internal/pkg/config"
	"coupon-engine/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewCouponCache,
	),
)

type couponCacheParams struct {
	fx.In

	Config config.Config
	Origin shared.CouponReadStore `name:"origin"`
	Client redis.UniversalClient  `optional:"true"`
}

type couponCacheResult struct {
	fx.Out

	Coupons shared.CouponReadStore
	Cache   shared.CouponCache
}

// NewCouponCache puts the Redis read-through cache in front of the origin store when
// a client is available and passes the origin through otherwise.
func NewCouponCache(p couponCacheParams) couponCacheResult {
	if p.Client == nil {
		return couponCacheResult{Coupons: p.Origin, Cache: cache.Nop{}}
	}
	store := cache.NewCouponStore(p.Origin, p.Client, p.Config.Redis.TTL, p.Config.Redis.KeyPrefix)
	return couponCacheResult{Coupons: store, Cache: store}
}
