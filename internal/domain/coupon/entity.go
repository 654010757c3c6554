package coupon

import (
	"time"

	"coupon-engine/internal/pkg/i18n"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID          uuid.UUID
	Code        Code
	Name        i18n.Text
	Description i18n.Text

	Type  DiscountType
	Value decimal.Decimal // percent for percent types, currency amount for fixed

	MinCartValue *decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time

	UsageLimit        *int
	UsageLimitPerUser *int
	UsageCount        int

	Stackable bool
	AutoApply bool
	IsActive  bool

	EligibleProducts   Set
	EligibleCategories Set

	BogoBuyQuantity  int
	BogoGetQuantity  int
	BogoEligibleSkus Set

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRestricted reports whether the coupon targets specific products or categories.
func (c *Coupon) IsRestricted() bool {
	return c.EligibleProducts.Len() > 0 || c.EligibleCategories.Len() > 0
}

// Matches reports whether a cart line counts toward this coupon.
func (c *Coupon) Matches(l Line) bool {
	if c.Type == TypeBogo {
		if c.BogoEligibleSkus.Len() == 0 && c.EligibleCategories.Len() == 0 {
			return true
		}
		return c.BogoEligibleSkus.Has(l.SKU) || c.EligibleCategories.HasAny(l.Categories)
	}
	return c.EligibleProducts.Has(l.SKU) || c.EligibleCategories.HasAny(l.Categories)
}

// appliesTo selects the lines a calculator works on.
func (c *Coupon) appliesTo(l Line) bool {
	switch c.Type {
	case TypePercentAll:
		return true
	case TypeFixed:
		return !c.IsRestricted() || c.Matches(l)
	default:
		return c.Matches(l)
	}
}

// needsMatchingLine is true for types that only make sense on targeted lines.
func (c *Coupon) needsMatchingLine() bool {
	switch c.Type {
	case TypePercentSpecific, TypeBogo:
		return true
	case TypeFixed:
		return c.IsRestricted()
	default:
		return false
	}
}

// Deactivate is the only way a coupon leaves service; rows are never deleted.
func (c *Coupon) Deactivate(now time.Time) {
	c.IsActive = false
	c.UpdatedAt = now
}

// Redemption is the append-only ledger entry written once per completed order.
type Redemption struct {
	ID             uuid.UUID
	CouponID       uuid.UUID
	CouponCode     Code
	UserID         string
	OrderReference string
	DiscountAmount decimal.Decimal
	RedeemedAt     time.Time
}

// UsageSnapshot is what the usage ledger read path reports during validation.
type UsageSnapshot struct {
	UsageCount      int
	UserRedemptions int
}
