package coupon

import (
	"time"

	"coupon-engine/internal/pkg/i18n"
)

// EligibilityInput is everything the evaluator needs besides the coupon itself.
type EligibilityInput struct {
	Cart    Cart
	Now     time.Time
	UserID  string
	Usage   UsageSnapshot
	Applied []Code // other coupons already on the cart
	// Currency is the ISO code amounts in rejection messages are shown in.
	Currency string
}

// Evaluate runs the eligibility checks in order and stops at the first failure.
// A nil result means the coupon may apply.
func Evaluate(c *Coupon, in EligibilityInput) *Rejection {
	if !c.IsActive {
		return Reject(c.Code, ReasonInactiveCoupon)
	}

	if c.StartDate != nil && in.Now.Before(*c.StartDate) {
		return Reject(c.Code, ReasonNotStarted)
	}
	if c.EndDate != nil && in.Now.After(*c.EndDate) {
		return Reject(c.Code, ReasonExpired)
	}

	if c.MinCartValue != nil && in.Cart.Subtotal().LessThan(*c.MinCartValue) {
		rej := Reject(c.Code, ReasonBelowMinCart)
		rej.Params = i18n.Params{
			"min":    c.MinCartValue.StringFixed(moneyPlaces),
			"symbol": i18n.CurrencySymbol(in.Currency),
		}
		return rej
	}

	if c.UsageLimit != nil && in.Usage.UsageCount >= *c.UsageLimit {
		return Reject(c.Code, ReasonUsageLimitReached)
	}

	if c.UsageLimitPerUser != nil && in.UserID != "" && in.Usage.UserRedemptions >= *c.UsageLimitPerUser {
		return Reject(c.Code, ReasonUserLimitReached)
	}

	if c.needsMatchingLine() && !hasMatchingLine(c, in.Cart) {
		return Reject(c.Code, ReasonNotEligible)
	}

	if !c.Stackable && hasOther(c.Code, in.Applied) {
		return Reject(c.Code, ReasonNotStackable)
	}

	return nil
}

func hasMatchingLine(c *Coupon, cart Cart) bool {
	for _, l := range cart.Lines {
		if c.Matches(l) {
			return true
		}
	}
	return false
}

func hasOther(self Code, applied []Code) bool {
	for _, code := range applied {
		if code != self {
			return true
		}
	}
	return false
}
