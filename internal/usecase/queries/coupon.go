package queries

import (
	"context"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/usecase/shared"
)

var ErrCouponNotFound = errs.New("coupon not found")

type CouponQueries interface {
	Get(ctx context.Context, code string) (*CouponView, error)
	List(ctx context.Context, filter shared.CouponFilter) ([]*CouponView, error)
	Redemptions(ctx context.Context, code string, cursor *Cursor, limit int) ([]*RedemptionView, *Cursor, error)
}

type couponQueriesImpl struct {
	coupons     shared.CouponReadStore
	usage       shared.UsageReader
	redemptions shared.RedemptionReadStore
}

func NewCouponQueries(coupons shared.CouponReadStore, usage shared.UsageReader, redemptions shared.RedemptionReadStore) CouponQueries {
	return &couponQueriesImpl{coupons: coupons, usage: usage, redemptions: redemptions}
}

func (q *couponQueriesImpl) Get(ctx context.Context, code string) (*CouponView, error) {
	c, err := q.find(ctx, code)
	if err != nil {
		return nil, err
	}
	// definitions may come from the cache; the counter never does
	snap, err := q.usage.Usage(ctx, c.ID, "")
	if err != nil {
		return nil, err
	}
	c.UsageCount = snap.UsageCount
	return toCouponView(c), nil
}

// List reads straight from the store, so UsageCount on each row is current.
func (q *couponQueriesImpl) List(ctx context.Context, filter shared.CouponFilter) ([]*CouponView, error) {
	filter.Limit = ValidateLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, err := q.coupons.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*CouponView, len(rows))
	for i, c := range rows {
		out[i] = toCouponView(c)
	}
	return out, nil
}

func (q *couponQueriesImpl) Redemptions(ctx context.Context, code string, cursor *Cursor, limit int) ([]*RedemptionView, *Cursor, error) {
	c, err := q.find(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	limit = ValidateLimit(limit)
	var rows []*coupon.Redemption
	if cursor == nil || cursor.After == "" {
		rows, err = q.redemptions.FirstPage(ctx, c.ID, limit+1)
	} else {
		lastRedeemedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.redemptions.After(ctx, c.ID, lastRedeemedAt, lastID, limit+1)
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.RedeemedAt, last.ID)}
		rows = rows[:limit]
	}

	out := make([]*RedemptionView, len(rows))
	for i, r := range rows {
		out[i] = &RedemptionView{
			ID:             r.ID,
			CouponCode:     r.CouponCode,
			UserID:         r.UserID,
			OrderReference: r.OrderReference,
			DiscountAmount: r.DiscountAmount,
			RedeemedAt:     r.RedeemedAt,
		}
	}
	return out, next, nil
}

func (q *couponQueriesImpl) find(ctx context.Context, code string) (*coupon.Coupon, error) {
	c, err := q.coupons.FindByCode(ctx, coupon.NormalizeCode(code))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func toCouponView(c *coupon.Coupon) *CouponView {
	v := &CouponView{Coupon: c, UsageCount: c.UsageCount}
	if c.UsageLimit != nil {
		remaining := *c.UsageLimit - c.UsageCount
		if remaining < 0 {
			remaining = 0
		}
		v.RemainingUses = &remaining
	}
	return v
}
