package repository

import (
	"context"

	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/pkg/pgconv"
	"coupon-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// UsageRepository is the write path of the usage ledger. Each increment is a single
// guarded statement, so concurrent redemptions serialize on the row lock and the
// loser sees zero rows instead of overshooting the limit.
type UsageRepository struct {
	db db.DBTX
}

func NewUsageRepository(dbtx db.DBTX) *UsageRepository {
	return &UsageRepository{db: dbtx}
}

func (r *UsageRepository) IncrementUsage(ctx context.Context, couponID uuid.UUID) (int, error) {
	var count int32
	err := r.db.QueryRow(ctx, `UPDATE coupons
		SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)
		RETURNING usage_count`, couponID).Scan(&count)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, errs.Mark(err, shared.ErrUsageLimitExhausted)
		}
		return 0, infra.WrapRepoErr("failed to increment coupon usage", err)
	}
	return int(count), nil
}

func (r *UsageRepository) IncrementUserUsage(ctx context.Context, couponID uuid.UUID, userID string, limit *int) (int, error) {
	var count int32
	err := r.db.QueryRow(ctx, `INSERT INTO coupon_user_usage (coupon_id, user_id, redemption_count, last_redeemed_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (coupon_id, user_id) DO UPDATE
			SET redemption_count = coupon_user_usage.redemption_count + 1,
				last_redeemed_at = now()
			WHERE $3::integer IS NULL OR coupon_user_usage.redemption_count < $3::integer
		RETURNING redemption_count`, couponID, userID, pgconv.Int4FromIntPtr(limit)).Scan(&count)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, errs.Mark(err, shared.ErrUserLimitExhausted)
		}
		return 0, infra.WrapRepoErr("failed to increment per-user usage", err)
	}
	return int(count), nil
}
