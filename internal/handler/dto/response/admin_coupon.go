package response

import (
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type CouponResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Name          i18n.Text  `json:"name"`
	Description   i18n.Text  `json:"description"`
	DiscountType  string     `json:"discountType" copier:"Type"`
	DiscountValue string     `json:"discountValue" copier:"Value"`
	MinCartValue  *string    `json:"minCartValue,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`

	UsageLimit        *int `json:"usageLimit,omitempty"`
	UsageLimitPerUser *int `json:"usageLimitPerUser,omitempty"`
	UsageCount        int  `json:"usageCount" copier:"-"`
	RemainingUses     *int `json:"remainingUses,omitempty" copier:"-"`

	Stackable bool `json:"stackable"`
	AutoApply bool `json:"autoApply"`
	IsActive  bool `json:"isActive"`

	EligibleProducts   []string `json:"eligibleProducts"`
	EligibleCategories []string `json:"eligibleCategories"`

	BogoBuyQuantity  int      `json:"bogoBuyQuantity,omitempty"`
	BogoGetQuantity  int      `json:"bogoGetQuantity,omitempty"`
	BogoEligibleSkus []string `json:"bogoEligibleSkus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var couponCopyOption = copier.Option{
	IgnoreEmpty: true,
	Converters: []copier.TypeConverter{
		{
			SrcType: decimal.Decimal{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(decimal.Decimal).String(), nil
			},
		},
		{
			SrcType: &decimal.Decimal{},
			DstType: new(string),
			Fn: func(src any) (any, error) {
				d, _ := src.(*decimal.Decimal)
				if d == nil {
					return (*string)(nil), nil
				}
				s := money(*d)
				return &s, nil
			},
		},
		{
			SrcType: coupon.Set{},
			DstType: []string{},
			Fn: func(src any) (any, error) {
				return src.(coupon.Set).Sorted(), nil
			},
		},
		{
			SrcType: coupon.Code(""),
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(coupon.Code).String(), nil
			},
		},
		{
			SrcType: coupon.DiscountType(""),
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(coupon.DiscountType).String(), nil
			},
		},
	},
}

func FromCouponView(v *queries.CouponView) (*CouponResponse, error) {
	out := &CouponResponse{}
	if err := copier.CopyWithOption(out, v.Coupon, couponCopyOption); err != nil {
		return nil, err
	}
	out.UsageCount = v.UsageCount
	out.RemainingUses = v.RemainingUses
	ensureSlices(out)
	return out, nil
}

func FromCouponViews(vs []*queries.CouponView) ([]*CouponResponse, error) {
	out := make([]*CouponResponse, len(vs))
	for i, v := range vs {
		r, err := FromCouponView(v)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// FromCoupon renders a definition just written by a command; usage is whatever the
// entity carries.
func FromCoupon(c *coupon.Coupon) (*CouponResponse, error) {
	v := &queries.CouponView{Coupon: c, UsageCount: c.UsageCount}
	if c.UsageLimit != nil {
		remaining := max(*c.UsageLimit-c.UsageCount, 0)
		v.RemainingUses = &remaining
	}
	return FromCouponView(v)
}

func ensureSlices(r *CouponResponse) {
	if r.EligibleProducts == nil {
		r.EligibleProducts = []string{}
	}
	if r.EligibleCategories == nil {
		r.EligibleCategories = []string{}
	}
	if r.BogoEligibleSkus == nil {
		r.BogoEligibleSkus = []string{}
	}
}

type CouponListResponse struct {
	Coupons []*CouponResponse `json:"coupons"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}
