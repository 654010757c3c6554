package shared

import (
	"context"

	"coupon-engine/internal/domain/coupon"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the write-side repositories bound to one transaction.
type Tx interface {
	Coupons() CouponRepository
	Usage() UsageRepository
	Redemptions() RedemptionRepository
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code coupon.Code) (*coupon.Coupon, error)
	// FindByCodeForUpdate locks the coupon row until the transaction ends.
	FindByCodeForUpdate(ctx context.Context, code coupon.Code) (*coupon.Coupon, error)
	Create(ctx context.Context, c *coupon.Coupon) error
	Update(ctx context.Context, c *coupon.Coupon) error
}

// UsageRepository is the write path of the usage ledger. Both increments are
// conditional: when the guard fails nothing changes and a sentinel is returned.
type UsageRepository interface {
	// IncrementUsage returns ErrUsageLimitExhausted when usage_count already equals usage_limit.
	IncrementUsage(ctx context.Context, couponID uuid.UUID) (int, error)
	// IncrementUserUsage returns ErrUserLimitExhausted when the user's count already equals limit.
	// A nil limit means unlimited.
	IncrementUserUsage(ctx context.Context, couponID uuid.UUID, userID string, limit *int) (int, error)
}

type RedemptionRepository interface {
	// Insert fails with a DUPLICATE_KEY repository error when the order was already recorded.
	Insert(ctx context.Context, r *coupon.Redemption) error
	CountByCoupon(ctx context.Context, couponID uuid.UUID) (int, error)
}
