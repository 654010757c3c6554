package components

import (
	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/infra/memstore"
	"coupon-engine/internal/infra/readstore"
	"coupon-engine/internal/infra/uow"
	"coupon-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// The coupon read store is provided under the "origin" name; CacheModule decides
// whether consumers see it directly or behind Redis.
const originStore = `name:"origin"`

var PostgresPersistenceModule = fx.Module("persistence/postgres",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			readstore.NewCouponReadStore,
			fx.As(new(shared.CouponReadStore)),
			fx.ResultTags(originStore),
		),
		fx.Annotate(
			readstore.NewUsageReadStore,
			fx.As(new(shared.UsageReader)),
		),
		fx.Annotate(
			readstore.NewRedemptionReadStore,
			fx.As(new(shared.RedemptionReadStore)),
		),
		fx.Annotate(
			readstore.NewCatalogReadStore,
			fx.As(new(shared.CategoryLookup)),
		),
		uow.NewPostgresUoW,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

var MemoryPersistenceModule = fx.Module("persistence/memory",
	fx.Provide(
		memstore.New,
		newMemoryPorts,
	),
)

type memoryPorts struct {
	fx.Out

	Coupons     shared.CouponReadStore `name:"origin"`
	Usage       shared.UsageReader
	Redemptions shared.RedemptionReadStore
	Catalog     shared.CategoryLookup
	UoW         shared.UnitOfWork
}

func newMemoryPorts(s *memstore.Store) memoryPorts {
	return memoryPorts{
		Coupons:     s,
		Usage:       s,
		Redemptions: s,
		Catalog:     s,
		UoW:         s,
	}
}
