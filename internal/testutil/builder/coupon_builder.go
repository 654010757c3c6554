//go:build unit || e2e

package builder

import (
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/i18n"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseTime is the fixed "now" shared by builders and mock clocks.
var BaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type CouponBuilder struct {
	Coupon coupon.Coupon
}

func NewCouponBuilder() *CouponBuilder {
	return &CouponBuilder{
		Coupon: coupon.Coupon{
			ID:                 uuid.New(),
			Code:               "SAVE10",
			Name:               i18n.Text{EN: "Ten percent off", HE: "עשרה אחוז הנחה"},
			Description:        i18n.Text{EN: "Storewide discount", HE: "הנחה על כל החנות"},
			Type:               coupon.TypePercentAll,
			Value:              decimal.NewFromInt(10),
			IsActive:           true,
			EligibleProducts:   coupon.NewSet(),
			EligibleCategories: coupon.NewSet(),
			BogoEligibleSkus:   coupon.NewSet(),
			CreatedAt:          BaseTime.Add(-30 * 24 * time.Hour),
			UpdatedAt:          BaseTime.Add(-30 * 24 * time.Hour),
		},
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

func (b *CouponBuilder) WithCode(code string) *CouponBuilder {
	b.Coupon.Code = coupon.NormalizeCode(code)
	return b
}

func (b *CouponBuilder) Percent(value string) *CouponBuilder {
	b.Coupon.Type = coupon.TypePercentAll
	b.Coupon.Value = decimal.RequireFromString(value)
	return b
}

func (b *CouponBuilder) PercentOn(value string, skus ...string) *CouponBuilder {
	b.Coupon.Type = coupon.TypePercentSpecific
	b.Coupon.Value = decimal.RequireFromString(value)
	b.Coupon.EligibleProducts = coupon.NewSet(skus...)
	return b
}

func (b *CouponBuilder) Fixed(amount string) *CouponBuilder {
	b.Coupon.Type = coupon.TypeFixed
	b.Coupon.Value = decimal.RequireFromString(amount)
	return b
}

func (b *CouponBuilder) Bogo(buy, get int, skus ...string) *CouponBuilder {
	b.Coupon.Type = coupon.TypeBogo
	b.Coupon.Value = decimal.Zero
	b.Coupon.BogoBuyQuantity = buy
	b.Coupon.BogoGetQuantity = get
	b.Coupon.BogoEligibleSkus = coupon.NewSet(skus...)
	return b
}

func (b *CouponBuilder) WithProducts(skus ...string) *CouponBuilder {
	b.Coupon.EligibleProducts = coupon.NewSet(skus...)
	return b
}

func (b *CouponBuilder) WithCategories(ids ...string) *CouponBuilder {
	b.Coupon.EligibleCategories = coupon.NewSet(ids...)
	return b
}

func (b *CouponBuilder) WithMinCart(amount string) *CouponBuilder {
	d := decimal.RequireFromString(amount)
	b.Coupon.MinCartValue = &d
	return b
}

func (b *CouponBuilder) WithWindow(start, end *time.Time) *CouponBuilder {
	b.Coupon.StartDate = start
	b.Coupon.EndDate = end
	return b
}

func (b *CouponBuilder) WithUsageLimit(limit int) *CouponBuilder {
	b.Coupon.UsageLimit = &limit
	return b
}

func (b *CouponBuilder) WithUserLimit(limit int) *CouponBuilder {
	b.Coupon.UsageLimitPerUser = &limit
	return b
}

func (b *CouponBuilder) Stackable() *CouponBuilder {
	b.Coupon.Stackable = true
	return b
}

func (b *CouponBuilder) AutoApply() *CouponBuilder {
	b.Coupon.AutoApply = true
	return b
}

func (b *CouponBuilder) Inactive() *CouponBuilder {
	b.Coupon.IsActive = false
	return b
}

func (b *CouponBuilder) CreatedAt(t time.Time) *CouponBuilder {
	b.Coupon.CreatedAt = t
	b.Coupon.UpdatedAt = t
	return b
}

func (b *CouponBuilder) Build() *coupon.Coupon {
	c := b.Coupon
	return &c
}

type CartBuilder struct {
	items      []coupon.Item
	categories map[string][]string
}

func NewCartBuilder() *CartBuilder {
	return &CartBuilder{categories: map[string][]string{}}
}

func (b *CartBuilder) Item(sku string, qty int, unitPrice string) *CartBuilder {
	b.items = append(b.items, coupon.Item{SKU: sku, Quantity: qty, UnitPrice: decimal.RequireFromString(unitPrice)})
	return b
}

func (b *CartBuilder) InCategory(sku string, categories ...string) *CartBuilder {
	b.categories[sku] = append(b.categories[sku], categories...)
	return b
}

func (b *CartBuilder) Items() []coupon.Item {
	out := make([]coupon.Item, len(b.items))
	copy(out, b.items)
	return out
}

func (b *CartBuilder) Categories() map[string][]string {
	return b.categories
}

func (b *CartBuilder) Build() coupon.Cart {
	return coupon.NewCart(b.Items(), b.categories)
}

func TimePtr(t time.Time) *time.Time {
	return &t
}
