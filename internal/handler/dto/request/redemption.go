package request

import (
	"coupon-engine/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type RecordRedemptionRequest struct {
	Code           string          `json:"code"`
	OrderReference string          `json:"orderReference"`
	UserID         *string         `json:"userId,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount" swaggertype:"string" example:"38.00"`
}

// ToCommand takes the shopper from the body. The caller is the checkout service,
// so the token subject identifies the service, not the shopper.
func (r RecordRedemptionRequest) ToCommand() commands.RecordRedemptionRequest {
	var userID string
	if r.UserID != nil {
		userID = *r.UserID
	}
	return commands.RecordRedemptionRequest{
		Code:           r.Code,
		OrderReference: r.OrderReference,
		UserID:         userID,
		DiscountAmount: r.DiscountAmount,
	}
}
