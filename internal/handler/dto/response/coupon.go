package response

import (
	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

// Amounts are rendered as fixed two-place strings so clients never see float noise.
func money(d decimal.Decimal) string {
	return coupon.RoundMoney(d).StringFixed(2)
}

type DiscountedItemResponse struct {
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	DiscountAmount string `json:"discountAmount" example:"20.00"`
}

type CouponLabelResponse struct {
	Code          string    `json:"code"`
	DiscountLabel i18n.Text `json:"discountLabel"`
}

type AppliedCouponResponse struct {
	Code           string    `json:"code"`
	DiscountType   string    `json:"discountType"`
	AutoApply      bool      `json:"autoApply"`
	Stackable      bool      `json:"stackable"`
	DiscountAmount string    `json:"discountAmount"`
	DiscountLabel  i18n.Text `json:"discountLabel"`
}

type RemovedCouponResponse struct {
	Code       string    `json:"code"`
	AutoApply  bool      `json:"autoApply"`
	ReasonCode string    `json:"reasonCode"`
	Messages   i18n.Text `json:"messages"`
}

type ValidationSuccessResponse struct {
	Success         bool                     `json:"success" example:"true"`
	Currency        string                   `json:"currency"`
	Subtotal        string                   `json:"subtotal"`
	DiscountAmount  string                   `json:"discountAmount"`
	NewSubtotal     string                   `json:"newSubtotal"`
	DiscountedItems []DiscountedItemResponse `json:"discountedItems"`
	Coupon          *CouponLabelResponse     `json:"coupon,omitempty"`
	AppliedCoupons  []AppliedCouponResponse  `json:"appliedCoupons"`
	RemovedCoupons  []RemovedCouponResponse  `json:"removedCoupons"`
	Message         string                   `json:"message"`
	Messages        i18n.Text                `json:"messages"`
}

type ValidationFailureResponse struct {
	Success    bool      `json:"success" example:"false"`
	Code       string    `json:"code,omitempty"`
	ReasonCode string    `json:"reasonCode" example:"Expired"`
	Message    string    `json:"message"`
	Messages   i18n.Text `json:"messages"`
}

// FromValidationResult returns a ValidationSuccessResponse or a ValidationFailureResponse.
func FromValidationResult(r *queries.ValidationResult) any {
	if !r.Success {
		return ValidationFailureResponse{
			Success:    false,
			Code:       r.Code.String(),
			ReasonCode: r.ReasonCode.String(),
			Message:    r.Messages.In(r.Locale),
			Messages:   r.Messages,
		}
	}

	resp := ValidationSuccessResponse{
		Success:         true,
		Currency:        r.Currency,
		Subtotal:        money(r.Subtotal),
		DiscountAmount:  money(r.DiscountAmount),
		NewSubtotal:     money(r.NewSubtotal),
		DiscountedItems: make([]DiscountedItemResponse, len(r.DiscountedItems)),
		AppliedCoupons:  make([]AppliedCouponResponse, len(r.Applied)),
		RemovedCoupons:  make([]RemovedCouponResponse, len(r.Removed)),
		Message:         r.Messages.In(r.Locale),
		Messages:        r.Messages,
	}
	if r.Code != "" {
		resp.Coupon = &CouponLabelResponse{Code: r.Code.String(), DiscountLabel: r.Label}
	}
	for i, d := range r.DiscountedItems {
		resp.DiscountedItems[i] = DiscountedItemResponse{SKU: d.SKU, Quantity: d.Quantity, DiscountAmount: money(d.DiscountAmount)}
	}
	for i, a := range r.Applied {
		resp.AppliedCoupons[i] = AppliedCouponResponse{
			Code:           a.Code.String(),
			DiscountType:   a.Type.String(),
			AutoApply:      a.AutoApply,
			Stackable:      a.Stackable,
			DiscountAmount: money(a.DiscountAmount),
			DiscountLabel:  a.Label,
		}
	}
	for i, rm := range r.Removed {
		resp.RemovedCoupons[i] = RemovedCouponResponse{
			Code:       rm.Code.String(),
			AutoApply:  rm.AutoApply,
			ReasonCode: rm.Reason.String(),
			Messages:   rm.Messages,
		}
	}
	return resp
}

type AutoApplyCandidateResponse struct {
	Code           string    `json:"code"`
	Name           i18n.Text `json:"name"`
	DiscountType   string    `json:"discountType"`
	Stackable      bool      `json:"stackable"`
	DiscountLabel  i18n.Text `json:"discountLabel"`
	DiscountAmount string    `json:"discountAmount"`
}

type AutoApplyListResponse struct {
	Coupons []AutoApplyCandidateResponse `json:"coupons"`
}

func FromAutoApplyCandidates(cs []*queries.AutoApplyCandidate) AutoApplyListResponse {
	out := AutoApplyListResponse{Coupons: make([]AutoApplyCandidateResponse, len(cs))}
	for i, c := range cs {
		out.Coupons[i] = AutoApplyCandidateResponse{
			Code:           c.Code.String(),
			Name:           c.Name,
			DiscountType:   c.Type.String(),
			Stackable:      c.Stackable,
			DiscountLabel:  c.Label,
			DiscountAmount: money(c.DiscountAmount),
		}
	}
	return out
}
