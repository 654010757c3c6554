package repository

import (
	"context"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/converter"
	"coupon-engine/internal/infra/db"

	"github.com/google/uuid"
)

type RedemptionRepository struct {
	db db.DBTX
}

func NewRedemptionRepository(dbtx db.DBTX) *RedemptionRepository {
	return &RedemptionRepository{db: dbtx}
}

func (r *RedemptionRepository) Insert(ctx context.Context, red *coupon.Redemption) error {
	_, err := r.db.Exec(ctx, `INSERT INTO coupon_redemptions (`+converter.RedemptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, converter.RedemptionArgs(red)...)
	if err != nil {
		return infra.WrapRepoErr("failed to insert redemption", err)
	}
	return nil
}

func (r *RedemptionRepository) CountByCoupon(ctx context.Context, couponID uuid.UUID) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM coupon_redemptions WHERE coupon_id = $1`, couponID).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count redemptions", err)
	}
	return int(n), nil
}
