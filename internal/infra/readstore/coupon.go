package readstore

import (
	"context"
	"strconv"
	"strings"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/converter"
	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/pkg/pgconv"
	"coupon-engine/internal/usecase/shared"
)

type CouponReadStore struct {
	db db.DBTX
}

func NewCouponReadStore(dbtx db.DBTX) *CouponReadStore {
	return &CouponReadStore{db: dbtx}
}

func (r *CouponReadStore) FindByCode(ctx context.Context, code coupon.Code) (*coupon.Coupon, error) {
	row := r.db.QueryRow(ctx, `SELECT `+converter.CouponColumns+` FROM coupons WHERE code = $1`, code.String())
	c, err := converter.ScanCoupon(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by code", err)
	}
	return c, nil
}

// ListAutoApply returns active auto-apply coupons in stacking order.
func (r *CouponReadStore) ListAutoApply(ctx context.Context) ([]*coupon.Coupon, error) {
	rows, err := r.db.Query(ctx, `SELECT `+converter.CouponColumns+` FROM coupons
		WHERE auto_apply AND is_active
		ORDER BY created_at, code`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list auto-apply coupons", err)
	}
	defer rows.Close()

	var out []*coupon.Coupon
	for rows.Next() {
		c, err := converter.ScanCoupon(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan coupon", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupons", err)
	}
	return out, nil
}

func (r *CouponReadStore) List(ctx context.Context, filter shared.CouponFilter) ([]*coupon.Coupon, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Active != nil {
		where = append(where, "is_active = "+arg(*filter.Active))
	}
	if filter.Type != nil {
		where = append(where, "discount_type = "+arg(filter.Type.String()))
	}
	if filter.AutoApply != nil {
		where = append(where, "auto_apply = "+arg(*filter.AutoApply))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + converter.CouponColumns + ` FROM coupons`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, code")
	sb.WriteString(" LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupons", err)
	}
	defer rows.Close()

	out := []*coupon.Coupon{}
	for rows.Next() {
		c, err := converter.ScanCoupon(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan coupon", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupons", err)
	}
	return out, nil
}
