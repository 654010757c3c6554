package converter

import (
	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/pkg/pgconv"
	"coupon-engine/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CouponColumns is the select list ScanCoupon expects, in order.
const CouponColumns = `id, code, name_en, name_he, description_en, description_he,
	discount_type, discount_value, min_cart_value, start_date, end_date,
	usage_limit, usage_limit_per_user, usage_count, stackable, auto_apply, is_active,
	eligible_products, eligible_categories, bogo_buy_quantity, bogo_get_quantity, bogo_eligible_skus,
	created_at, updated_at`

type couponRow struct {
	ID                 uuid.UUID
	Code               string
	NameEN             string
	NameHE             string
	DescriptionEN      string
	DescriptionHE      string
	DiscountType       string
	DiscountValue      pgtype.Numeric
	MinCartValue       pgtype.Numeric
	StartDate          pgtype.Timestamptz
	EndDate            pgtype.Timestamptz
	UsageLimit         pgtype.Int4
	UsageLimitPerUser  pgtype.Int4
	UsageCount         int32
	Stackable          bool
	AutoApply          bool
	IsActive           bool
	EligibleProducts   []string
	EligibleCategories []string
	BogoBuyQuantity    int32
	BogoGetQuantity    int32
	BogoEligibleSkus   []string
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

func ScanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var r couponRow
	err := row.Scan(
		&r.ID, &r.Code, &r.NameEN, &r.NameHE, &r.DescriptionEN, &r.DescriptionHE,
		&r.DiscountType, &r.DiscountValue, &r.MinCartValue, &r.StartDate, &r.EndDate,
		&r.UsageLimit, &r.UsageLimitPerUser, &r.UsageCount, &r.Stackable, &r.AutoApply, &r.IsActive,
		&r.EligibleProducts, &r.EligibleCategories, &r.BogoBuyQuantity, &r.BogoGetQuantity, &r.BogoEligibleSkus,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

func (r couponRow) toDomain() *coupon.Coupon {
	return &coupon.Coupon{
		ID:                 r.ID,
		Code:               coupon.Code(r.Code),
		Name:               i18n.Text{EN: r.NameEN, HE: r.NameHE},
		Description:        i18n.Text{EN: r.DescriptionEN, HE: r.DescriptionHE},
		Type:               coupon.DiscountType(r.DiscountType),
		Value:              pgconv.DecimalFromNumeric(r.DiscountValue),
		MinCartValue:       pgconv.DecimalPtrFromNumeric(r.MinCartValue),
		StartDate:          ptr.TimeFromPgtype(r.StartDate),
		EndDate:            ptr.TimeFromPgtype(r.EndDate),
		UsageLimit:         pgconv.IntPtrFromInt4(r.UsageLimit),
		UsageLimitPerUser:  pgconv.IntPtrFromInt4(r.UsageLimitPerUser),
		UsageCount:         int(r.UsageCount),
		Stackable:          r.Stackable,
		AutoApply:          r.AutoApply,
		IsActive:           r.IsActive,
		EligibleProducts:   coupon.NewSet(r.EligibleProducts...),
		EligibleCategories: coupon.NewSet(r.EligibleCategories...),
		BogoBuyQuantity:    int(r.BogoBuyQuantity),
		BogoGetQuantity:    int(r.BogoGetQuantity),
		BogoEligibleSkus:   coupon.NewSet(r.BogoEligibleSkus...),
		CreatedAt:          r.CreatedAt.Time.UTC(),
		UpdatedAt:          r.UpdatedAt.Time.UTC(),
	}
}

// CouponArgs returns the write arguments in CouponColumns order, minus usage_count.
// usage_count is owned by the usage ledger and is never written from a definition.
func CouponArgs(c *coupon.Coupon) []any {
	return []any{
		c.ID,
		c.Code.String(),
		c.Name.EN,
		c.Name.HE,
		c.Description.EN,
		c.Description.HE,
		c.Type.String(),
		pgconv.NumericFromDecimal(c.Value),
		pgconv.NumericFromDecimalPtr(c.MinCartValue),
		pgconv.TimestamptzFromPtr(c.StartDate),
		pgconv.TimestamptzFromPtr(c.EndDate),
		pgconv.Int4FromIntPtr(c.UsageLimit),
		pgconv.Int4FromIntPtr(c.UsageLimitPerUser),
		c.Stackable,
		c.AutoApply,
		c.IsActive,
		c.EligibleProducts.Sorted(),
		c.EligibleCategories.Sorted(),
		int32(c.BogoBuyQuantity), // #nosec G115 -- validated positive small ints
		int32(c.BogoGetQuantity), // #nosec G115
		c.BogoEligibleSkus.Sorted(),
		pgconv.TimestamptzFromTime(c.CreatedAt),
		pgconv.TimestamptzFromTime(c.UpdatedAt),
	}
}

type redemptionRow struct {
	ID             uuid.UUID
	CouponID       uuid.UUID
	CouponCode     string
	UserID         pgtype.Text
	OrderReference string
	DiscountAmount pgtype.Numeric
	RedeemedAt     pgtype.Timestamptz
}

// RedemptionColumns is the select list ScanRedemption expects, in order.
const RedemptionColumns = `id, coupon_id, coupon_code, user_id, order_reference, discount_amount, redeemed_at`

func ScanRedemption(row pgx.Row) (*coupon.Redemption, error) {
	var r redemptionRow
	if err := row.Scan(&r.ID, &r.CouponID, &r.CouponCode, &r.UserID, &r.OrderReference, &r.DiscountAmount, &r.RedeemedAt); err != nil {
		return nil, err
	}
	return &coupon.Redemption{
		ID:             r.ID,
		CouponID:       r.CouponID,
		CouponCode:     coupon.Code(r.CouponCode),
		UserID:         pgconv.StringFromText(r.UserID),
		OrderReference: r.OrderReference,
		DiscountAmount: pgconv.DecimalFromNumeric(r.DiscountAmount),
		RedeemedAt:     r.RedeemedAt.Time.UTC(),
	}, nil
}

func RedemptionArgs(r *coupon.Redemption) []any {
	return []any{
		r.ID,
		r.CouponID,
		r.CouponCode.String(),
		pgconv.TextFromString(r.UserID),
		r.OrderReference,
		pgconv.NumericFromDecimal(r.DiscountAmount),
		pgconv.TimestamptzFromTime(r.RedeemedAt),
	}
}
