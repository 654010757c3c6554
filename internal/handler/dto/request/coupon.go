package request

import (
	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

// CartItemRequest is one priced line. Shape checks happen in the engine so a bad
// line yields a ParseError result instead of a binding error.
type CartItemRequest struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"string" example:"49.90"`
}

type CartRequest struct {
	CartItems []CartItemRequest `json:"cartItems"`
	Currency  string            `json:"currency,omitempty" example:"ILS"`
	Locale    string            `json:"locale,omitempty" example:"he"`
	UserID    *string           `json:"userId,omitempty"`
}

type ValidateCouponRequest struct {
	CartRequest
	Code                string   `json:"code"`
	ExistingCouponCodes []string `json:"existingCouponCodes,omitempty"`
}

type ReconcileCouponsRequest struct {
	CartRequest
	AppliedCouponCodes []string `json:"appliedCouponCodes,omitempty"`
}

// ToCartInput prefers the authenticated user over the userId field of the body.
func (r CartRequest) ToCartInput(authUserID string) queries.CartInput {
	items := make([]coupon.Item, len(r.CartItems))
	for i, it := range r.CartItems {
		items[i] = coupon.Item{SKU: it.SKU, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	userID := authUserID
	if userID == "" && r.UserID != nil {
		userID = *r.UserID
	}
	return queries.CartInput{
		Items:    items,
		Currency: r.Currency,
		Locale:   r.Locale,
		UserID:   userID,
	}
}

func (r ValidateCouponRequest) ToInput(authUserID string) queries.ValidateInput {
	return queries.ValidateInput{
		CartInput:     r.ToCartInput(authUserID),
		Code:          r.Code,
		ExistingCodes: r.ExistingCouponCodes,
	}
}

func (r ReconcileCouponsRequest) ToInput(authUserID string) queries.ReconcileInput {
	return queries.ReconcileInput{
		CartInput:    r.ToCartInput(authUserID),
		AppliedCodes: r.AppliedCouponCodes,
	}
}
