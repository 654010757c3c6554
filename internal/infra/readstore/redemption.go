package readstore

import (
	"context"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/converter"
	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RedemptionReadStore struct {
	db db.DBTX
}

func NewRedemptionReadStore(dbtx db.DBTX) *RedemptionReadStore {
	return &RedemptionReadStore{db: dbtx}
}

func (r *RedemptionReadStore) FirstPage(ctx context.Context, couponID uuid.UUID, limit int) ([]*coupon.Redemption, error) {
	rows, err := r.db.Query(ctx, `SELECT `+converter.RedemptionColumns+` FROM coupon_redemptions
		WHERE coupon_id = $1
		ORDER BY redeemed_at DESC, id DESC
		LIMIT $2`, couponID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get redemptions first page", err)
	}
	return collectRedemptions(rows)
}

func (r *RedemptionReadStore) After(ctx context.Context, couponID uuid.UUID, lastRedeemedAt time.Time, lastID uuid.UUID, limit int) ([]*coupon.Redemption, error) {
	rows, err := r.db.Query(ctx, `SELECT `+converter.RedemptionColumns+` FROM coupon_redemptions
		WHERE coupon_id = $1 AND (redeemed_at, id) < ($2, $3)
		ORDER BY redeemed_at DESC, id DESC
		LIMIT $4`, couponID, pgconv.TimestamptzFromTime(lastRedeemedAt), lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get redemptions keyset page", err)
	}
	return collectRedemptions(rows)
}

func collectRedemptions(rows pgx.Rows) ([]*coupon.Redemption, error) {
	defer rows.Close()
	out := []*coupon.Redemption{}
	for rows.Next() {
		red, err := converter.ScanRedemption(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan redemption", err)
		}
		out = append(out, red)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate redemptions", err)
	}
	return out, nil
}
