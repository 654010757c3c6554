package repository

import (
	"context"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/converter"
	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/pkg/pgconv"
)

type CouponRepository struct {
	db db.DBTX
}

func NewCouponRepository(dbtx db.DBTX) *CouponRepository {
	return &CouponRepository{db: dbtx}
}

func (r *CouponRepository) FindByCode(ctx context.Context, code coupon.Code) (*coupon.Coupon, error) {
	return r.find(ctx, `SELECT `+converter.CouponColumns+` FROM coupons WHERE code = $1`, code)
}

func (r *CouponRepository) FindByCodeForUpdate(ctx context.Context, code coupon.Code) (*coupon.Coupon, error) {
	return r.find(ctx, `SELECT `+converter.CouponColumns+` FROM coupons WHERE code = $1 FOR UPDATE`, code)
}

func (r *CouponRepository) find(ctx context.Context, query string, code coupon.Code) (*coupon.Coupon, error) {
	c, err := converter.ScanCoupon(r.db.QueryRow(ctx, query, code.String()))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by code", err)
	}
	return c, nil
}

func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.db.Exec(ctx, `INSERT INTO coupons (
			id, code, name_en, name_he, description_en, description_he,
			discount_type, discount_value, min_cart_value, start_date, end_date,
			usage_limit, usage_limit_per_user, stackable, auto_apply, is_active,
			eligible_products, eligible_categories, bogo_buy_quantity, bogo_get_quantity, bogo_eligible_skus,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		converter.CouponArgs(c)...)
	if err != nil {
		return infra.WrapRepoErr("failed to create coupon", err)
	}
	return nil
}

// Update rewrites the definition by id. code, usage_count and created_at are left untouched.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	args := converter.CouponArgs(c)
	args = append(args[:21:21], args[22]) // without created_at

	tag, err := r.db.Exec(ctx, `UPDATE coupons SET
			name_en = $3, name_he = $4, description_en = $5, description_he = $6,
			discount_type = $7, discount_value = $8, min_cart_value = $9, start_date = $10, end_date = $11,
			usage_limit = $12, usage_limit_per_user = $13, stackable = $14, auto_apply = $15, is_active = $16,
			eligible_products = $17, eligible_categories = $18,
			bogo_buy_quantity = $19, bogo_get_quantity = $20, bogo_eligible_skus = $21,
			updated_at = $22
		WHERE id = $1 AND code = $2`,
		args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update coupon", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	return nil
}
