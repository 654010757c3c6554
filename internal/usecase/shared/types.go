package shared

import (
	"context"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrUsageLimitExhausted = errs.New("coupon usage limit exhausted")
	ErrUserLimitExhausted  = errs.New("per-user usage limit exhausted")
)

// CouponFilter narrows admin listings. Nil fields are not applied.
type CouponFilter struct {
	Active    *bool
	Type      *coupon.DiscountType
	AutoApply *bool
	Limit     int
	Offset    int
}

//go:generate mockgen -destination=../../mock/shared/stores.go -package=sharedmock coupon-engine/internal/usecase/shared CouponReadStore

// CouponReadStore serves coupon definitions. Implementations may cache; callers
// must never rely on UsageCount from here and ask UsageReader instead.
type CouponReadStore interface {
	FindByCode(ctx context.Context, code coupon.Code) (*coupon.Coupon, error)
	ListAutoApply(ctx context.Context) ([]*coupon.Coupon, error)
	List(ctx context.Context, filter CouponFilter) ([]*coupon.Coupon, error)
}

// UsageReader is the read path of the usage ledger. It never mutates and is never cached.
type UsageReader interface {
	Usage(ctx context.Context, couponID uuid.UUID, userID string) (coupon.UsageSnapshot, error)
}

// RedemptionReadStore pages redemptions newest first by (redeemed_at, id).
type RedemptionReadStore interface {
	FirstPage(ctx context.Context, couponID uuid.UUID, limit int) ([]*coupon.Redemption, error)
	After(ctx context.Context, couponID uuid.UUID, lastRedeemedAt time.Time, lastID uuid.UUID, limit int) ([]*coupon.Redemption, error)
}

// CategoryLookup resolves the live category membership of SKUs.
type CategoryLookup interface {
	CategoriesBySKU(ctx context.Context, skus []string) (map[string][]string, error)
}

// CouponCache drops cached definitions after an admin mutation.
type CouponCache interface {
	Invalidate(ctx context.Context, code coupon.Code) error
}
