package readstore

import (
	"context"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// UsageReadStore is the read path of the usage ledger; always live, never cached.
type UsageReadStore struct {
	db db.DBTX
}

func NewUsageReadStore(dbtx db.DBTX) *UsageReadStore {
	return &UsageReadStore{db: dbtx}
}

func (r *UsageReadStore) Usage(ctx context.Context, couponID uuid.UUID, userID string) (coupon.UsageSnapshot, error) {
	var snap struct {
		usage int32
		user  int32
	}
	err := r.db.QueryRow(ctx, `SELECT c.usage_count,
			COALESCE((SELECT u.redemption_count FROM coupon_user_usage u
				WHERE u.coupon_id = c.id AND u.user_id = $2), 0)
		FROM coupons c WHERE c.id = $1`, couponID, userID).Scan(&snap.usage, &snap.user)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return coupon.UsageSnapshot{}, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return coupon.UsageSnapshot{}, infra.WrapRepoErr("failed to read coupon usage", err)
	}
	if userID == "" {
		snap.user = 0
	}
	return coupon.UsageSnapshot{UsageCount: int(snap.usage), UserRedemptions: int(snap.user)}, nil
}
