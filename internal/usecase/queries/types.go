package queries

import (
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/i18n"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartInput is a priced cart as handed over by the cart subsystem.
type CartInput struct {
	Items    []coupon.Item
	Currency string
	Locale   string
	UserID   string // empty for anonymous carts
}

type ValidateInput struct {
	CartInput
	Code          string
	ExistingCodes []string
}

type ReconcileInput struct {
	CartInput
	AppliedCodes []string
}

// AppliedCoupon is one coupon of the final stack, in application order.
type AppliedCoupon struct {
	Code           coupon.Code
	Type           coupon.DiscountType
	AutoApply      bool
	Stackable      bool
	DiscountAmount decimal.Decimal
	Label          i18n.Text
}

// RemovedCoupon is a previously applied code that no longer qualifies.
type RemovedCoupon struct {
	Code      coupon.Code
	AutoApply bool
	Reason    coupon.ReasonCode
	Messages  i18n.Text
}

// ValidationResult is either a success carrying the stack result or a typed rejection.
type ValidationResult struct {
	Success  bool
	Locale   i18n.Locale
	Currency string

	// Rejection
	ReasonCode coupon.ReasonCode

	// Success
	Code            coupon.Code
	Label           i18n.Text
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	NewSubtotal     decimal.Decimal
	DiscountedItems []coupon.LineDiscount
	Applied         []AppliedCoupon
	Removed         []RemovedCoupon

	Messages i18n.Text
}

type AutoApplyCandidate struct {
	Code           coupon.Code
	Name           i18n.Text
	Type           coupon.DiscountType
	Stackable      bool
	Label          i18n.Text
	DiscountAmount decimal.Decimal
}

// CouponView is the admin projection: definition plus live usage.
type CouponView struct {
	Coupon        *coupon.Coupon
	UsageCount    int
	RemainingUses *int
}

type RedemptionView struct {
	ID             uuid.UUID
	CouponCode     coupon.Code
	UserID         string
	OrderReference string
	DiscountAmount decimal.Decimal
	RedeemedAt     time.Time
}
